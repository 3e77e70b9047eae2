package registry

import (
	"testing"

	"newsrake/internal/core/domain"
	"newsrake/internal/testutil"
)

func TestAddAndGet(t *testing.T) {
	c := NewCatalog(testutil.NewTestLogger())

	err := c.Add(testutil.CoreSpec("reuters"))
	testutil.AssertNoError(t, err, "register valid spec")

	spec, ok := c.Get("reuters")
	testutil.AssertTrue(t, ok, "registered spec found")
	testutil.AssertEqual(t, spec.Name, "reuters", "spec name")

	_, ok = c.Get("missing")
	testutil.AssertFalse(t, ok, "unknown name misses")
}

func TestAddRejectsDuplicates(t *testing.T) {
	c := NewCatalog(testutil.NewTestLogger())

	testutil.AssertNoError(t, c.Add(testutil.CoreSpec("reuters")), "first registration")
	testutil.AssertError(t, c.Add(testutil.CoreSpec("reuters")), "duplicate name")
	testutil.AssertEqual(t, c.Len(), 1, "catalog size")
}

func TestAddRejectsInvalidSpec(t *testing.T) {
	c := NewCatalog(testutil.NewTestLogger())
	err := c.Add(domain.SourceSpec{Name: "", Tier: domain.TierCore, Kind: domain.QueryKindRSS})
	testutil.AssertError(t, err, "invalid spec")
}

func TestAddAllSkipsBadEntries(t *testing.T) {
	c := NewCatalog(testutil.NewTestLogger())

	added := c.AddAll([]domain.SourceSpec{
		testutil.CoreSpec("reuters"),
		{Name: "", Tier: domain.TierCore, Kind: domain.QueryKindRSS},
		testutil.DiscoveredSpec("hn"),
		testutil.CoreSpec("reuters"), // duplicate
	})

	testutil.AssertEqual(t, added, 2, "added count")
	testutil.AssertEqual(t, c.Len(), 2, "catalog size")
}

func TestAllPreservesRegistrationOrder(t *testing.T) {
	c := NewCatalog(testutil.NewTestLogger())
	c.AddAll([]domain.SourceSpec{
		testutil.DiscoveredSpec("hn"),
		testutil.CoreSpec("reuters"),
		testutil.DiscoveredSpec("techcrunch"),
	})

	all := c.All()
	testutil.AssertEqual(t, all[0].Name, "hn", "first registered")
	testutil.AssertEqual(t, all[1].Name, "reuters", "second registered")
	testutil.AssertEqual(t, all[2].Name, "techcrunch", "third registered")

	// snapshot, not a view
	all[0].Name = "mutated"
	again := c.All()
	testutil.AssertEqual(t, again[0].Name, "hn", "catalog unaffected by caller mutation")
}

func TestByTier(t *testing.T) {
	c := NewCatalog(testutil.NewTestLogger())
	c.AddAll([]domain.SourceSpec{
		testutil.DiscoveredSpec("hn"),
		testutil.CoreSpec("reuters"),
		testutil.CoreSpec("bbc"),
	})

	core := c.ByTier(domain.TierCore)
	testutil.AssertEqual(t, len(core), 2, "core specs")
	testutil.AssertEqual(t, core[0].Name, "reuters", "core order")

	discovered := c.ByTier(domain.TierDiscovered)
	testutil.AssertEqual(t, len(discovered), 1, "discovered specs")
}

func TestRankedCoreFirst(t *testing.T) {
	c := NewCatalog(testutil.NewTestLogger())
	c.AddAll([]domain.SourceSpec{
		testutil.DiscoveredSpec("hn"),
		testutil.CoreSpec("reuters"),
		testutil.DiscoveredSpec("techcrunch"),
		testutil.CoreSpec("bbc"),
	})

	ranked := c.Ranked()
	want := []string{"reuters", "bbc", "hn", "techcrunch"}
	for i, name := range want {
		testutil.AssertEqual(t, ranked[i].Name, name, "rank position")
	}
}
