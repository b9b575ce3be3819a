package dreo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionFromToken(t *testing.T) {
	assert.Equal(t, "NA", RegionFromToken("eyJhb.xyz:NA"))
	assert.Equal(t, "EU", RegionFromToken("a:b:EU"))
	assert.Equal(t, "", RegionFromToken("tokenwithoutsuffix"))
	assert.Equal(t, "", RegionFromToken(""))
}

func TestRegionSlug(t *testing.T) {
	for region, want := range map[string]string{
		"NA": "us",
		"na": "us",
		"US": "us",
		"EU": "eu",
		"eu": "eu",
	} {
		slug, known := RegionSlug(region)
		assert.True(t, known, region)
		assert.Equal(t, want, slug, region)
	}

	slug, known := RegionSlug("AP")
	assert.False(t, known)
	assert.Equal(t, "us", slug)
}
