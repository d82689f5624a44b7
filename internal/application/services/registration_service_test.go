package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/coursereg/registrar/internal/adapters/console"
	"github.com/coursereg/registrar/internal/adapters/repository"
	"github.com/coursereg/registrar/internal/domain/entities"
	"github.com/coursereg/registrar/internal/infrastructure/config"
	"github.com/coursereg/registrar/internal/infrastructure/logger"
	"github.com/coursereg/registrar/internal/infrastructure/metrics"
	"github.com/coursereg/registrar/internal/ports"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterFile = "Enrollments.json"

type harness struct {
	svc *RegistrationService
	out *bytes.Buffer
}

func newHarness(fs afero.Fs, input string) *harness {
	out := &bytes.Buffer{}
	log := logger.NewNop()
	svc := NewRegistrationService(
		repository.NewJSONRosterRepository(fs, rosterFile, log),
		console.New(strings.NewReader(input), out),
		metrics.New(config.MetricsConfig{}),
		log,
	)
	return &harness{svc: svc, out: out}
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func TestRun_RegisterSaveRestartLoad(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fs := afero.NewMemMapFs()
	first := newHarness(fs, lines("1", "Jane", "Doe", "Biology", "3", "4"))

	// --- Act ---
	require.NoError(t, first.svc.Run(context.Background()))
	second := newHarness(fs, lines("4"))
	require.NoError(t, second.svc.Run(context.Background()))

	// --- Assert ---
	assert.Contains(t, first.out.String(), MsgFileNotFound)
	assert.Contains(t, first.out.String(), "You have registered Jane Doe for Biology.")
	assert.NotContains(t, second.out.String(), MsgFileNotFound)

	want := entities.Roster{{FirstName: "Jane", LastName: "Doe", CourseName: "Biology"}}
	if diff := cmp.Diff(want, second.svc.Roster()); diff != "" {
		t.Errorf("reloaded roster mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_InvalidChoiceRedisplaysMenu(t *testing.T) {
	t.Parallel()

	h := newHarness(afero.NewMemMapFs(), lines("5", "", " 1", "4"))

	require.NoError(t, h.svc.Run(context.Background()))

	out := h.out.String()
	assert.Equal(t, 3, strings.Count(out, MsgInvalidChoice))
	assert.Equal(t, 4, strings.Count(out, "---- Course Registration Program ----"))
	assert.Empty(t, h.svc.Roster())
	assert.True(t, strings.HasSuffix(out, MsgProgramEnded+"\n"))
}

func TestRun_ShowPrintsRoster(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	stored := `[{"first_name":"Ann","last_name":"Lee","course_name":"Math"}]`
	require.NoError(t, afero.WriteFile(fs, rosterFile, []byte(stored), 0o644))
	h := newHarness(fs, lines("2", "4"))

	require.NoError(t, h.svc.Run(context.Background()))

	assert.Contains(t, h.out.String(), "String Format:\nAnn,Lee,Math\n")
}

func TestRun_MalformedFileIsReportedAndSessionContinues(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, rosterFile, []byte("{oops"), 0o644))
	h := newHarness(fs, lines("2", "4"))

	// --- Act ---
	err := h.svc.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), MsgFormatError)
	assert.Contains(t, h.out.String(), "format error (*json.SyntaxError)")
	assert.Empty(t, h.svc.Roster())

	data, readErr := afero.ReadFile(fs, rosterFile)
	require.NoError(t, readErr)
	assert.Equal(t, "{oops", string(data))
}

func TestRun_SaveFailureIsReportedAndSessionContinues(t *testing.T) {
	t.Parallel()

	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, rosterFile, []byte("[]"), 0o644))
	h := newHarness(afero.NewReadOnlyFs(base), lines("1", "Jane", "Doe", "Biology", "3", "2", "4"))

	require.NoError(t, h.svc.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, MsgSaveUndefined)
	assert.NotContains(t, out, "You have registered")
	assert.Contains(t, out, "Jane,Doe,Biology", "the roster survives a failed save")
}

func TestRun_EndOfInputEndsSession(t *testing.T) {
	t.Parallel()

	h := newHarness(afero.NewMemMapFs(), lines("1", "Jane"))

	require.NoError(t, h.svc.Run(context.Background()))

	assert.True(t, strings.HasSuffix(h.out.String(), MsgProgramEnded+"\n"))
	assert.Empty(t, h.svc.Roster(), "a registration cut off by end of input is discarded")
}

func TestRun_LongCourseNameIsRegisteredAndSaved(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	course := strings.Repeat("x", 70000)
	h := newHarness(fs, lines("1", "Jane", "Doe", course, "3", "4"))

	require.NoError(t, h.svc.Run(context.Background()))

	require.Equal(t, 1, h.svc.Roster().Len())
	assert.Equal(t, course, h.svc.Roster()[0].CourseName)
	data, err := afero.ReadFile(fs, rosterFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), course)
}

func TestRun_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := newHarness(afero.NewMemMapFs(), lines("4"))

	err := h.svc.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegister_AppendsLast(t *testing.T) {
	t.Parallel()

	h := newHarness(afero.NewMemMapFs(), "")
	ctx := context.Background()
	require.NoError(t, h.svc.Register(ctx, entities.Registration{FirstName: "Ann", LastName: "Lee", CourseName: "Math"}))
	before := h.svc.Roster().Len()
	reg := entities.Registration{FirstName: "Jane", LastName: "Doe", CourseName: "Biology"}

	require.NoError(t, h.svc.Register(ctx, reg))

	roster := h.svc.Roster()
	require.Equal(t, before+1, roster.Len())
	assert.Equal(t, reg, roster[roster.Len()-1])
}

func TestRegister_RejectsInvalidNames(t *testing.T) {
	t.Parallel()

	h := newHarness(afero.NewMemMapFs(), "")

	err := h.svc.Register(context.Background(), entities.Registration{FirstName: "Jane Ann", LastName: "Doe"})

	require.ErrorIs(t, err, entities.ErrValidation)
	assert.Empty(t, h.svc.Roster())
}

func TestLoad_ReturnsFormatErrorAfterReporting(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, rosterFile, []byte("nope"), 0o644))
	h := newHarness(fs, "")

	err := h.svc.Load(context.Background())

	require.ErrorIs(t, err, entities.ErrFormat)
	assert.Contains(t, h.out.String(), MsgFormatError)
}

type loadRecorder struct {
	results []string
}

func (r *loadRecorder) RecordRegistration(int)          {}
func (r *loadRecorder) RecordLoad(result string, _ int) { r.results = append(r.results, result) }
func (r *loadRecorder) RecordSave(error)                {}

func TestLoad_RecordsResultThroughPort(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	rec := &loadRecorder{}
	log := logger.NewNop()
	svc := NewRegistrationService(
		repository.NewJSONRosterRepository(fs, rosterFile, log),
		console.New(strings.NewReader(""), &bytes.Buffer{}),
		rec,
		log,
	)

	require.NoError(t, svc.Load(context.Background()))
	require.NoError(t, afero.WriteFile(fs, rosterFile, []byte("{"), 0o644))
	require.ErrorIs(t, svc.Load(context.Background()), entities.ErrFormat)

	assert.Equal(t, []string{ports.ResultCreated, ports.ResultFormat}, rec.results)
}
