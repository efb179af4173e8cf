package datasync

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NOAA-EPIC/AQM-Eval/internal/rand"
	cyclestatus "github.com/NOAA-EPIC/AQM-Eval/pkg/cycle/status"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/datasync/status"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/errors"
	manifeststatus "github.com/NOAA-EPIC/AQM-Eval/pkg/manifest/status"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/model"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage"
	"github.com/NOAA-EPIC/AQM-Eval/pkg/storage/localfs"
	transferstatus "github.com/NOAA-EPIC/AQM-Eval/pkg/transfer/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// countingStore tallies listing and transfer calls against a wrapped store.
type countingStore struct {
	storage.Store

	mu        sync.Mutex
	listings  int
	transfers int
}

func (c *countingStore) bump(counter *int) {
	c.mu.Lock()
	*counter++
	c.mu.Unlock()
}

func (c *countingStore) Has(ctx context.Context, key string) (bool, error) {
	c.bump(&c.transfers)
	return c.Store.Has(ctx, key)
}

func (c *countingStore) Head(ctx context.Context, key string) (storage.ObjectInfo, error) {
	c.bump(&c.transfers)
	return c.Store.Head(ctx, key)
}

func (c *countingStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	c.bump(&c.transfers)
	return c.Store.Get(ctx, key)
}

func (c *countingStore) Put(ctx context.Context, key string, source io.Reader) error {
	c.bump(&c.transfers)
	return c.Store.Put(ctx, key, source)
}

func (c *countingStore) KeysPrefix(ctx context.Context, token, prefix string, count int) ([]storage.ObjectInfo, string, error) {
	c.bump(&c.listings)
	return c.Store.KeysPrefix(ctx, token, prefix, count)
}

func memStore() storage.Store {
	return localfs.New(afero.NewMemMapFs())
}

func cycleAt(day int) model.ForecastCycle {
	return model.NewForecastCycle(2023, time.June, day, 12)
}

// planProbe resolves the plan for req against src without running anything.
func planProbe(t testing.TB, req model.DatasetRequest, src storage.Store) []model.RemoteObject {
	t.Helper()

	s, err := New(req, SourceStore(src), DestinationStore(memStore()))
	require.NoError(t, err)

	plan, err := s.Plan(context.Background())
	require.NoError(t, err)
	return plan
}

// seedSingles puts a payload under every non-prefix key req resolves to
// and reports the byte total. Probing against an empty store drops the
// listing families, leaving exactly the single objects.
func seedSingles(t testing.TB, req model.DatasetRequest, store storage.Store) int64 {
	t.Helper()

	var total int64
	for _, obj := range planProbe(t, req, memStore()) {
		payload := rand.LetterString(32)
		require.NoError(t, store.Put(context.Background(), obj.Key, strings.NewReader(payload)))
		total += int64(len(payload))
	}
	return total
}

// seedPrefixFamilies populates the RAVE fire and restart listings for
// the 2023-06-01T12 cycle, four matching files plus two the entry
// filters exclude. It reports the matching byte total.
func seedPrefixFamilies(t testing.TB, store storage.Store) int64 {
	t.Helper()
	ctx := context.Background()

	var total int64
	for _, key := range []string{
		"UFS-AQM/RAVE_fire/20230601/RAVE-HrlyEmiss-3km_v2r0_blend_s202306011200000_e202306011259590_c202306011303380.nc",
		"UFS-AQM/RAVE_fire/20230601/RAVE-HrlyEmiss-3km_v2r0_blend_s202306011300000_e202306011359590_c202306011403380.nc",
		"UFS-AQM/RESTART/20230531.230000.fv_core.res.tile1.nc",
		"UFS-AQM/RESTART/20230531.230000.fv_tracer.res.tile1.nc",
	} {
		payload := rand.LetterString(48)
		require.NoError(t, store.Put(ctx, key, strings.NewReader(payload)))
		total += int64(len(payload))
	}

	// same prefixes, but filtered out of every plan
	for _, key := range []string{
		"UFS-AQM/RAVE_fire/20230601/RAVE-HrlyEmiss-3km.log",
		"UFS-AQM/RESTART/20230601.000000.coupler.res",
	} {
		require.NoError(t, store.Put(ctx, key, strings.NewReader("excluded")))
	}
	return total
}

func seedAirNow(t testing.TB, store storage.Store, days ...string) map[string]string {
	t.Helper()

	payloads := make(map[string]string, len(days))
	for _, day := range days {
		key := "UFS-AQM/Observations/AirNow/AirNow_" + day + ".nc"
		payload := rand.LetterString(64)
		require.NoError(t, store.Put(context.Background(), key, strings.NewReader(payload)))
		payloads[key] = payload
	}
	return payloads
}

func hasKey(t testing.TB, store storage.Store, key string) bool {
	t.Helper()
	ok, err := store.Has(context.Background(), key)
	require.NoError(t, err)
	return ok
}

func TestSyncRunTimeVarying(t *testing.T) {
	req := model.DatasetRequest{
		Kind:       model.KindTimeVarying,
		UseCase:    model.UseCaseUndefined,
		FirstCycle: cycleAt(1),
		LastCycle:  cycleAt(2),
	}

	ctx := context.Background()
	src := memStore()
	total := seedSingles(t, req, src)
	total += seedPrefixFamilies(t, src)

	payload := rand.LetterString(48)
	require.NoError(t, src.Put(ctx,
		"UFS-AQM/RAVE_fire/20230602/RAVE-HrlyEmiss-3km_v2r0_blend_s202306021200000_e202306021259590_c202306021303380.nc",
		strings.NewReader(payload)))
	total += int64(len(payload))

	dst := memStore()
	s, err := New(req, SourceStore(src), DestinationStore(dst))
	require.NoError(t, err)

	result, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, result.Ok())
	assert.Equal(t, 61, result.Completed)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, total, result.Bytes)

	downloaded, next, err := dst.KeysPrefix(ctx, "", "", storage.PageSize)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Len(t, downloaded, 61)

	// destination paths mirror the keys relative to the dataset prefix
	assert.True(t, hasKey(t, dst, "FV3GFS/gfs.20230601/12/atmos/gfs.t12z.atmf000.nc"))
	assert.True(t, hasKey(t, dst, "GEFS_Aerosol/20230602/00/gfs.t00z.atmf036.nemsio"))
	assert.True(t, hasKey(t, dst, "RESTART/20230531.230000.fv_core.res.tile1.nc"))
	assert.False(t, hasKey(t, dst, "RAVE_fire/20230601/RAVE-HrlyEmiss-3km.log"))

	// a second pass finds everything in place and moves no bytes
	again, err := New(req, SourceStore(src), DestinationStore(dst))
	require.NoError(t, err)

	result, err = again.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 61, result.Skipped)
	assert.Zero(t, result.Completed)
	assert.Zero(t, result.Bytes)
}

func TestSyncRunObservations(t *testing.T) {
	req := model.DatasetRequest{
		Kind:       model.KindObservations,
		UseCase:    model.UseCaseUndefined,
		FirstCycle: cycleAt(1),
		LastCycle:  cycleAt(3),
	}

	ctx := context.Background()
	src := memStore()
	payloads := seedAirNow(t, src, "20230601", "20230602", "20230603")

	dst := memStore()
	s, err := New(req, SourceStore(src), DestinationStore(dst))
	require.NoError(t, err)

	result, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Completed)

	for key, payload := range payloads {
		rdr, err := dst.Get(ctx, strings.TrimPrefix(key, "UFS-AQM/"))
		require.NoError(t, err)
		b, err := io.ReadAll(rdr)
		require.NoError(t, err)
		require.NoError(t, rdr.Close())
		assert.Equal(t, payload, string(b))
	}
}

func TestSyncRunSRWFixed(t *testing.T) {
	ctx := context.Background()
	src := memStore()
	for _, key := range []string{
		"develop-20250702/fix/aqm/bio/BEIS_SARC401.ncf",
		"develop-20250702/fix/fix_am/global_climaeropac_global.txt",
		"develop-20250702/NaturalEarth/ne_10m_admin_0_countries.shp",
	} {
		require.NoError(t, src.Put(ctx, key, strings.NewReader(rand.LetterString(24))))
	}

	dst := memStore()
	s, err := New(model.DatasetRequest{
		Kind:    model.KindSRWFixed,
		UseCase: model.UseCaseUndefined,
	}, SourceStore(src), DestinationStore(dst))
	require.NoError(t, err)

	result, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, result.Ok())
	assert.Equal(t, 3, result.Completed)
	assert.True(t, hasKey(t, dst, "fix/aqm/bio/BEIS_SARC401.ncf"))
	assert.True(t, hasKey(t, dst, "NaturalEarth/ne_10m_admin_0_countries.shp"))
}

func TestSyncPlanDeduplicates(t *testing.T) {
	req := model.DatasetRequest{
		Kind:         model.KindTimeVarying,
		UseCase:      model.UseCaseUndefined,
		FirstCycle:   cycleAt(1),
		LastCycle:    cycleAt(1),
		ForecastHour: 3,
	}

	src := memStore()
	seedPrefixFamilies(t, src)

	// the shifted surface forecast walk lands on hours also listed
	// explicitly: 003, 009, 015 and 021 resolve twice
	plan := planProbe(t, req, src)
	assert.Len(t, plan, 28)

	seen := make(map[string]int, len(plan))
	for _, obj := range plan {
		seen[obj.RelPath]++
	}
	assert.Len(t, seen, len(plan))
	assert.Equal(t, 1, seen["GFS_SFC_DATA/gfs.20230601/12/atmos/gfs.t12z.sfcf003.nc"])

	replay := planProbe(t, req, src)
	require.Equal(t, plan, replay)
}

func TestSyncPlanFiltersListings(t *testing.T) {
	req := model.DatasetRequest{
		Kind:       model.KindTimeVarying,
		UseCase:    model.UseCaseUndefined,
		FirstCycle: cycleAt(1),
		LastCycle:  cycleAt(1),
	}

	src := memStore()
	seedPrefixFamilies(t, src)

	plan := planProbe(t, req, src)
	assert.Len(t, plan, 32)

	var listed []model.RemoteObject
	for _, obj := range plan {
		require.False(t, obj.Prefix, "plans carry no unexpanded prefixes")
		assert.NotContains(t, obj.RelPath, ".log")
		assert.NotEqual(t, "RESTART/20230601.000000.coupler.res", obj.RelPath)
		if strings.HasPrefix(obj.RelPath, "RAVE_fire/") || strings.HasPrefix(obj.RelPath, "RESTART/") {
			listed = append(listed, obj)
		}
	}
	require.Len(t, listed, 4)
	for _, obj := range listed {
		// listed objects carry their size so unchanged files skip cheaply
		assert.EqualValues(t, 48, obj.Size)
		assert.Equal(t, "UFS-AQM/"+obj.RelPath, obj.Key)
	}
}

func TestSyncPlanSnippetWindow(t *testing.T) {
	// the AEROMMA preset pins the window, snippet clamps it to two cycles
	plan := planProbe(t, model.DatasetRequest{
		Kind:    model.KindTimeVarying,
		UseCase: model.UseCaseAeromma,
		Snippet: true,
	}, memStore())

	assert.Len(t, plan, 56)
	assert.Contains(t, plan[0].Key, "20230601")
	assert.Contains(t, plan[len(plan)-1].Key, "20230602")
	for _, obj := range plan {
		onWindow := strings.Contains(obj.Key, "20230601") || strings.Contains(obj.Key, "20230602")
		assert.True(t, onWindow, "unexpected cycle for %s", obj.Key)
	}
}

func TestSyncDryRunListsOnly(t *testing.T) {
	req := model.DatasetRequest{
		Kind:       model.KindTimeVarying,
		UseCase:    model.UseCaseUndefined,
		FirstCycle: cycleAt(1),
		LastCycle:  cycleAt(1),
	}

	backing := memStore()
	seedPrefixFamilies(t, backing)
	src := &countingStore{Store: backing}

	root := filepath.Join(t.TempDir(), "aqm-data")
	s, err := New(req, SourceStore(src), DestinationPath(root), DryRun(true))
	require.NoError(t, err)

	result, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 32, result.Completed)
	assert.Zero(t, result.Bytes)

	// planning pages each listing prefix once, nothing is fetched
	assert.Equal(t, 2, src.listings)
	assert.Zero(t, src.transfers)

	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err), "dry runs must not create the destination")
}

func TestSyncRunPartialFailure(t *testing.T) {
	req := model.DatasetRequest{
		Kind:       model.KindObservations,
		UseCase:    model.UseCaseUndefined,
		FirstCycle: cycleAt(1),
		LastCycle:  cycleAt(3),
	}

	src := memStore()
	seedAirNow(t, src, "20230601", "20230602") // 20230603 never uploaded

	root := filepath.Join(t.TempDir(), "aqm-data")
	s, err := New(req, SourceStore(src), DestinationPath(root))
	require.NoError(t, err)

	result, err := s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrPartialJobFailure))
	assert.Equal(t, 2, result.Completed)
	assert.Equal(t, 1, result.Failed)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "UFS-AQM/Observations/AirNow/AirNow_20230603.nc", result.Failures[0].Key)
	assert.Equal(t, filepath.Join(root, "Observations", "AirNow", "AirNow_20230603.nc"), result.Failures[0].Dest)
	assert.Equal(t, "not found", result.Failures[0].Reason)

	// completed transfers landed under the destination root regardless
	_, err = os.Stat(filepath.Join(root, "Observations", "AirNow", "AirNow_20230601.nc"))
	require.NoError(t, err)
}

func TestSyncNewValidation(t *testing.T) {
	valid := model.DatasetRequest{
		Kind:       model.KindObservations,
		UseCase:    model.UseCaseUndefined,
		FirstCycle: cycleAt(1),
		LastCycle:  cycleAt(3),
	}

	_, err := New(valid)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrInvalidDestination))

	_, err = New(valid, DestinationStore(memStore()), MaxConcurrent(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, transferstatus.ErrInvalidConfig))

	unknown := valid
	unknown.UseCase = model.UseCaseAeromma
	_, err = New(unknown, DestinationStore(memStore()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, manifeststatus.ErrUnresolvableRequest))

	backwards := valid
	backwards.LastCycle = model.NewForecastCycle(2023, time.May, 1, 12)
	_, err = New(backwards, DestinationStore(memStore()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cyclestatus.ErrInvalidDateRange))

	// time-varying has no preset window, so the bounds are required
	_, err = New(model.DatasetRequest{
		Kind:    model.KindTimeVarying,
		UseCase: model.UseCaseUndefined,
	}, DestinationStore(memStore()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, cyclestatus.ErrInvalidDateRange))
}

func TestSyncLogsRunIdentifier(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	src := memStore()
	seedAirNow(t, src, "20230601")

	s, err := New(model.DatasetRequest{
		Kind:       model.KindObservations,
		UseCase:    model.UseCaseUndefined,
		FirstCycle: cycleAt(1),
		LastCycle:  cycleAt(1),
	}, SourceStore(src), DestinationStore(memStore()), Logger(zap.New(core)))
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	require.NoError(t, err)

	var sawStart, sawDone bool
	for _, entry := range recorded.All() {
		fields := entry.ContextMap()
		assert.NotEmpty(t, fields["run_id"])
		assert.Equal(t, "observations", fields["kind"])
		assert.Equal(t, "UNDEFINED", fields["use_case"])
		switch entry.Message {
		case "starting sync":
			sawStart = true
		case "sync finished":
			sawDone = true
		}
	}
	assert.True(t, sawStart)
	assert.True(t, sawDone)
}
