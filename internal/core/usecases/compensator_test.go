// internal/core/usecases/compensator_test.go
package usecases

import (
	"strings"
	"testing"

	"newsrake/internal/core/domain"
	"newsrake/internal/platform/registry"
	"newsrake/internal/testutil"
)

var testPolicy = CompensationPolicy{
	MaxRounds:         2,
	ToleranceFraction: 0.9,
	FillBuffer:        2,
}

// buildRun monta catálogo, allocation y estado con entregas simuladas.
func buildRun(t *testing.T, specs []domain.SourceSpec, total, minPerCore int, delivered map[string]int) (*domain.RunState, Allocation, *registry.Catalog, map[string]bool) {
	t.Helper()

	catalog := registry.NewCatalog(testutil.NewTestLogger())
	catalog.AddAll(specs)

	alloc, err := NewQuotaAllocator(testutil.NewTestLogger()).Allocate(catalog.All(), total, minPerCore)
	testutil.AssertNoError(t, err, "Allocate")

	state := domain.NewRunState("test topic", total)
	state.TierMin = alloc.TierMin

	used := make(map[string]bool)
	seq := 0
	for _, spec := range specs {
		n, ok := delivered[spec.Name]
		if !ok {
			continue
		}
		used[spec.Name] = true
		for i := 0; i < n; i++ {
			seq++
			testutil.AssertTrue(t, state.Accept(testutil.SyntheticItem(spec, seq)), "accept synthetic item")
		}
	}
	return state, alloc, catalog, used
}

func TestPlanRoundNoGapNoTasks(t *testing.T) {
	specs := []domain.SourceSpec{
		testutil.CoreSpec("core_a"),
		testutil.DiscoveredSpec("disc_a"),
	}
	// quota: core_a 3, disc_a 3 (total 6); entregar todo
	state, alloc, catalog, used := buildRun(t, specs, 6, 3, map[string]int{
		"core_a": 3,
		"disc_a": 3,
	})

	comp := NewCompensator(catalog, testPolicy, nil, testutil.NewTestLogger())
	tasks := comp.PlanRound(state, alloc, used, 1)
	testutil.AssertEqual(t, len(tasks), 0, "met quotas need no compensation")
}

func TestPlanRoundToleranceBandSkips(t *testing.T) {
	specs := []domain.SourceSpec{
		testutil.CoreSpec("core_a"),
		testutil.DiscoveredSpec("disc_a"),
	}
	// target 20, umbral max(18, 18) = 18; entregar 19 con gap de tier
	state, alloc, catalog, used := buildRun(t, specs, 20, 5, map[string]int{
		"core_a": 4,
		"disc_a": 15,
	})

	comp := NewCompensator(catalog, testPolicy, nil, testutil.NewTestLogger())
	tasks := comp.PlanRound(state, alloc, used, 1)
	testutil.AssertEqual(t, len(tasks), 0, "within tolerance band")

	found := false
	for _, w := range state.Warnings() {
		if strings.Contains(w, "within tolerance") {
			found = true
		}
	}
	testutil.AssertTrue(t, found, "tolerance warning recorded")
}

func TestPlanRoundWidensUnderdeliveringSource(t *testing.T) {
	specs := []domain.SourceSpec{
		testutil.SiteSpec("official_blog", "blog.example.com"),
		testutil.CoreSpec("core_a"),
	}
	// core_a cumple; official_blog (discovered) entrega poco
	state, alloc, catalog, used := buildRun(t, specs, 10, 5, map[string]int{
		"core_a":        alloc0(t, specs, 10, 5, "core_a"),
		"official_blog": 1,
	})

	comp := NewCompensator(catalog, testPolicy, nil, testutil.NewTestLogger())
	tasks := comp.PlanRound(state, alloc, used, 1)

	testutil.AssertTrue(t, len(tasks) > 0, "compensation planned")
	var widened *FetchTask
	for _, task := range tasks {
		if task.Spec.Name == "official_blog" && task.Widened {
			widened = task
		}
	}
	testutil.AssertNotNil(t, widened, "under-delivering source gets widened task")
	testutil.AssertFalse(t, strings.Contains(widened.Query, "site:"), "widened query drops site restriction")
	gap := state.Shortfall(domain.TierDiscovered)
	testutil.AssertEqual(t, widened.Limit, gap+testPolicy.FillBuffer, "limit includes fill buffer")
}

// alloc0 calcula la quota asignada a una fuente para poblar entregas
// exactas en los tests.
func alloc0(t *testing.T, specs []domain.SourceSpec, total, minPerCore int, name string) int {
	t.Helper()
	alloc, err := NewQuotaAllocator(testutil.NewTestLogger()).Allocate(specs, total, minPerCore)
	testutil.AssertNoError(t, err, "Allocate")
	return alloc.Quotas[name]
}

func TestPlanRoundPromotesUnusedSource(t *testing.T) {
	specs := []domain.SourceSpec{
		testutil.CoreSpec("core_a"),
		testutil.DiscoveredSpec("used_disc"),
		testutil.DiscoveredSpec("reserve_disc"),
	}
	// used_disc falló en permanente; reserve_disc nunca se usó
	state, alloc, catalog, used := buildRun(t, specs, 12, 4, map[string]int{
		"core_a": alloc0(t, specs, 12, 4, "core_a"),
	})
	used["used_disc"] = true
	state.MarkFailed("used_disc")

	comp := NewCompensator(catalog, testPolicy, nil, testutil.NewTestLogger())
	tasks := comp.PlanRound(state, alloc, used, 1)

	promoted := false
	for _, task := range tasks {
		if task.Spec.Name == "reserve_disc" {
			promoted = true
			testutil.AssertFalse(t, task.Widened, "promotion uses the normal query")
		}
		if task.Spec.Name == "used_disc" {
			t.Error("failed source must not receive new tasks")
		}
	}
	testutil.AssertTrue(t, promoted, "unused source promoted")
}

func TestPlanRoundPromotesAcrossTiers(t *testing.T) {
	specs := []domain.SourceSpec{
		testutil.CoreSpec("core_a"),
		testutil.DiscoveredSpec("disc_a"),
		testutil.DiscoveredSpec("reserve_disc"),
	}
	// core_a falló en permanente y su tier no tiene más fuentes;
	// disc_a cumplió el mínimo discovered; reserve_disc quedó sin usar.
	// Total 8 < umbral 10, así que el gap core debe resolverse
	// promoviendo la reserva del otro tier.
	state, alloc, catalog, used := buildRun(t, specs, 12, 4, map[string]int{
		"disc_a": 8,
	})
	used["core_a"] = true
	state.MarkFailed("core_a")

	comp := NewCompensator(catalog, testPolicy, nil, testutil.NewTestLogger())
	tasks := comp.PlanRound(state, alloc, used, 1)

	testutil.AssertEqual(t, len(tasks), 1, "cross-tier promotion planned")
	task := tasks[0]
	testutil.AssertEqual(t, task.Spec.Name, "reserve_disc", "reserve source chosen")
	testutil.AssertFalse(t, task.Widened, "promotion uses the normal query")
	gap := state.Shortfall(domain.TierCore)
	testutil.AssertEqual(t, task.Limit, gap+testPolicy.FillBuffer, "limit covers the core gap plus buffer")
}

func TestPlanRoundReloadsOverdeliveringSource(t *testing.T) {
	specs := []domain.SourceSpec{
		testutil.CoreSpec("core_a"),
		testutil.DiscoveredSpec("prolific"),
		testutil.DiscoveredSpec("weak"),
	}
	state, alloc, catalog, used := buildRun(t, specs, 12, 2, map[string]int{
		"core_a":   2,
		"prolific": alloc0(t, specs, 12, 2, "prolific") + 1,
	})
	// weak se usó, falló en permanente; prolific sobre-entregó
	used["weak"] = true
	state.MarkFailed("weak")

	comp := NewCompensator(catalog, testPolicy, nil, testutil.NewTestLogger())
	tasks := comp.PlanRound(state, alloc, used, 1)

	reloaded := false
	for _, task := range tasks {
		if task.Spec.Name == "prolific" && !task.Widened {
			reloaded = true
		}
	}
	testutil.AssertTrue(t, reloaded, "over-delivering source reloaded")
}

func TestPlanRoundHonorsRoundCeiling(t *testing.T) {
	specs := []domain.SourceSpec{testutil.CoreSpec("core_a")}
	state, alloc, catalog, used := buildRun(t, specs, 10, 5, map[string]int{"core_a": 1})

	comp := NewCompensator(catalog, testPolicy, nil, testutil.NewTestLogger())
	testutil.AssertTrue(t, len(comp.PlanRound(state, alloc, used, 1)) > 0, "round 1 plans work")
	testutil.AssertTrue(t, len(comp.PlanRound(state, alloc, used, 2)) > 0, "round 2 plans work")
	testutil.AssertEqual(t, len(comp.PlanRound(state, alloc, used, 3)), 0, "ceiling reached")
}

func TestPlanRoundNoLeverAvailable(t *testing.T) {
	specs := []domain.SourceSpec{testutil.CoreSpec("core_a")}
	state, alloc, catalog, used := buildRun(t, specs, 10, 5, map[string]int{})
	used["core_a"] = true
	state.MarkFailed("core_a")

	comp := NewCompensator(catalog, testPolicy, nil, testutil.NewTestLogger())
	tasks := comp.PlanRound(state, alloc, used, 1)
	testutil.AssertEqual(t, len(tasks), 0, "no healthy lever")

	found := false
	for _, w := range state.Warnings() {
		if strings.Contains(w, "no source can compensate") {
			found = true
		}
	}
	testutil.AssertTrue(t, found, "unrecoverable shortfall warned")
}

func TestDefaultWidener(t *testing.T) {
	site := testutil.SiteSpec("blog", "blog.example.com")
	got := DefaultWidener(site, "rust compilers")
	testutil.AssertFalse(t, strings.Contains(got, "site:"), "site operator removed")
	testutil.AssertTrue(t, strings.Contains(got, "rust compilers"), "topic preserved")

	plain := testutil.DiscoveredSpec("general")
	testutil.AssertEqual(t, DefaultWidener(plain, "rust compilers"), "rust compilers", "plain query unchanged")
}
