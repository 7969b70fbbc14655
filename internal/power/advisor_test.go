package power

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLookup_KnownVendors(t *testing.T) {
	advisor := NewAdvisor(zap.NewNop())

	vendors := []string{
		"xiaomi", "redmi", "oppo", "vivo", "letv",
		"honor", "huawei", "asus", "nokia", "samsung", "oneplus",
	}
	for _, vendor := range vendors {
		advisory := advisor.Lookup(vendor)
		assert.Equal(t, vendor, advisory.Vendor, "vendor %s", vendor)
		assert.NotEmpty(t, advisory.SettingsRef, "vendor %s", vendor)
	}
}

func TestLookup_CaseAndWhitespaceInsensitive(t *testing.T) {
	advisor := NewAdvisor(zap.NewNop())

	assert.Equal(t, "xiaomi", advisor.Lookup("Xiaomi").Vendor)
	assert.Equal(t, "samsung", advisor.Lookup("  SAMSUNG ").Vendor)
}

func TestLookup_UnknownVendorFallsBackToGeneric(t *testing.T) {
	advisor := NewAdvisor(zap.NewNop())

	advisory := advisor.Lookup("pixel")
	assert.Equal(t, GenericAdvisory, advisory)
	assert.Equal(t, "android.settings.IGNORE_BATTERY_OPTIMIZATION_SETTINGS", advisory.SettingsRef)
}

func TestLookup_RedmiSharesXiaomiSettings(t *testing.T) {
	advisor := NewAdvisor(zap.NewNop())

	xiaomi := advisor.Lookup("xiaomi")
	redmi := advisor.Lookup("redmi")
	assert.Equal(t, xiaomi.SettingsRef, redmi.SettingsRef)
	assert.Equal(t, "redmi", redmi.Vendor)
}

func TestIsAdvisoryNeeded(t *testing.T) {
	advisor := NewAdvisor(zap.NewNop())

	assert.True(t, advisor.IsAdvisoryNeeded("oneplus"))
	assert.True(t, advisor.IsAdvisoryNeeded("Huawei"))
	assert.False(t, advisor.IsAdvisoryNeeded("pixel"))
	assert.False(t, advisor.IsAdvisoryNeeded(""))
}
