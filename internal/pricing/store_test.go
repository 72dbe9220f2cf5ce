package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/flipscore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_EmbeddedTableParses(t *testing.T) {
	s := Default()
	assert.NotEmpty(t, s.Version())
	for _, ct := range append(domain.PrimaryComponents, domain.ComponentCooling) {
		_, ok := s.Range(ct)
		assert.True(t, ok, "missing range for %s", ct)
		assert.NotEmpty(t, s.Tiers(ct), "missing tiers for %s", ct)
	}
}

func TestDefault_PricesDecreaseWithCondition(t *testing.T) {
	s := Default()
	for _, ct := range append(domain.PrimaryComponents, domain.ComponentCooling) {
		for _, tier := range s.Tiers(ct) {
			for i := 1; i < len(domain.ConditionTiers); i++ {
				better := tier.Price(domain.ConditionTiers[i-1])
				worse := tier.Price(domain.ConditionTiers[i])
				assert.True(t, better.GreaterThan(worse), "%s %s: %s !> %s", ct, tier.Model, domain.ConditionTiers[i-1], domain.ConditionTiers[i])
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "RTX3080TI", Normalize("rtx 3080-ti"))
	assert.Equal(t, "I712700K", Normalize("i7-12700K"))
	assert.Equal(t, "", Normalize(" -- "))
}

func TestLookup_PrefersLongestContainedTier(t *testing.T) {
	s := Default()

	tier, ok := s.Lookup(domain.ComponentGPU, "EVGA RTX 3080 Ti FTW3")
	require.True(t, ok)
	assert.Equal(t, "RTX 3080 Ti", tier.Model)

	tier, ok = s.Lookup(domain.ComponentGPU, "NVIDIA GeForce RTX 3080")
	require.True(t, ok)
	assert.Equal(t, "RTX 3080", tier.Model)

	tier, ok = s.Lookup(domain.ComponentCPU, "Intel Core i7-12700KF")
	require.True(t, ok)
	assert.Equal(t, "i7-12700K", tier.Model)
}

func TestLookup_ReverseMatchPrefersShortest(t *testing.T) {
	s := Default()
	// "3080" no contiene ningún tier, pero está contenido en "RTX3080" y "RTX3080TI"
	tier, ok := s.Lookup(domain.ComponentGPU, "3080")
	require.True(t, ok)
	assert.Equal(t, "RTX 3080", tier.Model)
}

func TestLookup_Misses(t *testing.T) {
	s := Default()
	_, ok := s.Lookup(domain.ComponentGPU, "RT")
	assert.False(t, ok, "inputs shorter than 3 chars never match")
	_, ok = s.Lookup(domain.ComponentCase, "generic")
	assert.False(t, ok)
	_, ok = s.Lookup(domain.ComponentType("monitor"), "Dell U2720Q")
	assert.False(t, ok)
}

func TestLookup_RAMAndStorageByMetadataKey(t *testing.T) {
	s := Default()
	ram := domain.ComponentSpec{CapacityGB: 32, Kind: "DDR4", SpeedMHz: 3600}
	tier, ok := s.Lookup(domain.ComponentRAM, ram.LookupKey(domain.ComponentRAM))
	require.True(t, ok)
	assert.Equal(t, "32GB DDR4", tier.Model)
	assert.Equal(t, "90.00", tier.Price(domain.ConditionGood).StringFixed(2))

	ssd := domain.ComponentSpec{CapacityGB: 1000, Kind: "NVMe"}
	tier, ok = s.Lookup(domain.ComponentStorage, ssd.LookupKey(domain.ComponentStorage))
	require.True(t, ok)
	assert.Equal(t, "1TB NVMe", tier.Model)
}

func TestGPU_HierarchyFlags(t *testing.T) {
	s := Default()

	g, ok := s.GPU("RTX 3080")
	require.True(t, ok)
	assert.True(t, g.Mining)

	g, ok = s.GPU("ASUS TUF RTX 4090 OC")
	require.True(t, ok)
	assert.False(t, g.Mining)
	assert.True(t, g.HighDemand)
	assert.Equal(t, 100, g.Performance)

	_, ok = s.GPU("Matrox G200")
	assert.False(t, ok)
}

func TestRange_Interpolate(t *testing.T) {
	r := Range{Min: domain.Dollars(40), Max: domain.Dollars(200)}
	assert.Equal(t, "96.00", r.Interpolate(0.35).StringFixed(2))
	assert.Equal(t, "40.00", r.Interpolate(-1).StringFixed(2))
	assert.Equal(t, "200.00", r.Interpolate(2).StringFixed(2))
}

func TestParse_RejectsMissingConditionPrice(t *testing.T) {
	_, err := Parse([]byte(`
components:
  cpu:
    range: { min: 10, max: 100 }
    tiers:
      - { model: "i5-12400", prices: { new: 100, good: 80 } }
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing excellent price")
}

func TestParse_RejectsInvertedRange(t *testing.T) {
	_, err := Parse([]byte(`
components:
  gpu:
    range: { min: 500, max: 100 }
`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: "test"
components:
  psu:
    range: { min: 20, max: 200 }
    tiers:
      - { model: "750W Gold", prices: { new: 100, excellent: 90, good: 80, fair: 70, poor: 60 } }
`), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "test", s.Version())
	tier, ok := s.Lookup(domain.ComponentPSU, "Corsair RM750x 750W Gold")
	require.True(t, ok)
	assert.Equal(t, "80.00", tier.Price(domain.ConditionGood).StringFixed(2))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
