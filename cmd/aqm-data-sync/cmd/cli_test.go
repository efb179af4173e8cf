package cmd

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NOAA-EPIC/AQM-Eval/internal/rand"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage/localfs"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/transfer"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ExitMocks struct {
	mock.Mock
	fatalCalls int
	exitCodes  []int
}

func (m *ExitMocks) Fatalf(format string, v ...interface{}) {
	m.fatalCalls++
}

func (m *ExitMocks) Fatalln(v ...interface{}) {
	m.fatalCalls++
}

func (m *ExitMocks) Exit(code int) {
	m.exitCodes = append(m.exitCodes, code)
}

// https://github.com/stretchr/testify/issues/610
func makeFatalfMock(m *ExitMocks) func(string, ...interface{}) {
	return func(format string, v ...interface{}) {
		m.Fatalf(format, v...)
	}
}

func makeFatallnMock(m *ExitMocks) func(...interface{}) {
	return func(v ...interface{}) {
		m.Fatalln(v...)
	}
}

func makeExitMock(m *ExitMocks) func(int) {
	return func(code int) {
		m.Exit(code)
	}
}

var exitMocks *ExitMocks

func resetFlags() {
	datasyncFlags.sync.DstDir = ""
	datasyncFlags.sync.FirstCycleDate = ""
	datasyncFlags.sync.LastCycleDate = ""
	datasyncFlags.sync.ForecastHour = 0
	datasyncFlags.sync.UseCase = string(model.UseCaseUndefined)
	datasyncFlags.sync.MaxConcurrentRequests = transfer.DefaultMaxConcurrent
	datasyncFlags.sync.DryRun = false
	datasyncFlags.sync.Snippet = false
}

// setupTests patches the fatal exits and substitutes an in-memory
// source store for the S3 bucket.
func setupTests(t *testing.T) (storage.Store, *bytes.Buffer) {
	t.Helper()

	exitMocks = new(ExitMocks)
	logFatalf = makeFatalfMock(exitMocks)
	logFatalln = makeFatallnMock(exitMocks)
	osExit = makeExitMock(exitMocks)

	out := new(bytes.Buffer)
	infoLogger = log.New(out, "", 0)

	src := localfs.New(afero.NewMemMapFs())
	testSourceStore = src
	resetFlags()

	t.Cleanup(func() {
		testSourceStore = nil
		logFatalf = log.Fatalf
		logFatalln = log.Fatalln
		osExit = os.Exit
		infoLogger = log.New(os.Stdout, "", 0)
	})
	return src, out
}

func seedAirNow(t *testing.T, store storage.Store, days ...string) {
	t.Helper()
	for _, day := range days {
		key := "UFS-AQM/Observations/AirNow/AirNow_" + day + ".nc"
		require.NoError(t, store.Put(context.Background(), key, strings.NewReader(rand.LetterString(64))))
	}
}

func TestCliRequiresDestination(t *testing.T) {
	_, _ = setupTests(t)

	rootCmd.SetArgs([]string{"time-varying", "--first-cycle-date", "20230601"})
	require.Error(t, rootCmd.Execute(), "a destination directory is always required")
}

func TestCliObservationsSync(t *testing.T) {
	src, out := setupTests(t)
	seedAirNow(t, src, "20230601", "20230602")

	dstDir := filepath.Join(t.TempDir(), "observations")
	rootCmd.SetArgs([]string{"observations",
		"--dst-dir", dstDir,
		"--first-cycle-date", "20230601",
	})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 0, exitMocks.fatalCalls)
	assert.Empty(t, exitMocks.exitCodes)
	assert.Contains(t, out.String(), "completed: 2, skipped: 0, failed: 0")

	for _, day := range []string{"20230601", "20230602"} {
		_, err := os.Stat(filepath.Join(dstDir, "Observations", "AirNow", "AirNow_"+day+".nc"))
		require.NoError(t, err)
	}

	// a second invocation skips the files already on disk
	out.Reset()
	rootCmd.SetArgs([]string{"observations",
		"--dst-dir", dstDir,
		"--first-cycle-date", "20230601",
	})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "completed: 0, skipped: 2, failed: 0")
}

func TestCliTimeVaryingDryRun(t *testing.T) {
	_, out := setupTests(t)

	dstDir := filepath.Join(t.TempDir(), "aqm-data")
	rootCmd.SetArgs([]string{"time-varying",
		"--dst-dir", dstDir,
		"--use-case", "AEROMMA",
		"--snippet",
		"--dry-run",
	})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 0, exitMocks.fatalCalls)

	assert.Contains(t, out.String(), "DRY RUN")
	assert.Contains(t, out.String(), "completed: 56, skipped: 0, failed: 0")

	_, err := os.Stat(dstDir)
	assert.True(t, os.IsNotExist(err), "a dry run must not create the destination")
}

func TestCliPartialFailureExitsNonZero(t *testing.T) {
	src, out := setupTests(t)
	seedAirNow(t, src, "20230601", "20230602") // 20230603 missing upstream

	dstDir := filepath.Join(t.TempDir(), "observations")
	rootCmd.SetArgs([]string{"observations",
		"--dst-dir", dstDir,
		"--first-cycle-date", "20230601",
		"--last-cycle-date", "20230603",
	})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, []int{1}, exitMocks.exitCodes)
	assert.Contains(t, out.String(), "completed: 2, skipped: 0, failed: 1")
	assert.Contains(t, out.String(), "AirNow_20230603.nc")
	assert.Contains(t, out.String(), "not found")
}

func TestCliValidation(t *testing.T) {
	_, _ = setupTests(t)
	dstDir := filepath.Join(t.TempDir(), "data")

	// unknown use case
	rootCmd.SetArgs([]string{"time-varying",
		"--dst-dir", dstDir,
		"--use-case", "NOPE",
	})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 1, exitMocks.fatalCalls)

	// malformed cycle date
	resetFlags()
	rootCmd.SetArgs([]string{"time-varying",
		"--dst-dir", dstDir,
		"--first-cycle-date", "2023-06-01",
	})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 2, exitMocks.fatalCalls)

	// time-varying without dates and without a use case window
	resetFlags()
	rootCmd.SetArgs([]string{"time-varying", "--dst-dir", dstDir})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 3, exitMocks.fatalCalls)

	// concurrency must be at least 1
	resetFlags()
	rootCmd.SetArgs([]string{"observations",
		"--dst-dir", dstDir,
		"--first-cycle-date", "20230601",
		"--max-concurrent-requests", "0",
	})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 4, exitMocks.fatalCalls)
}

func TestCliHelpText(t *testing.T) {
	_, _ = setupTests(t)

	for cmdName, mention := range map[string]string{
		"time-varying": "--first-cycle-date",
		"srw-fixed":    "fixed input data",
		"observations": "AirNow",
	} {
		out := new(bytes.Buffer)
		rootCmd.SetOut(out)
		rootCmd.SetErr(out)
		rootCmd.SetArgs([]string{cmdName, "--help"})
		require.NoError(t, rootCmd.Execute())
		assert.Contains(t, out.String(), "--dst-dir")
		assert.Contains(t, out.String(), mention)
	}
}
