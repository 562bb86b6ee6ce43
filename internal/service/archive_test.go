package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Wordpress", displayName("wordpress"))
	assert.Equal(t, "Shopify", displayName("shopify"))
	assert.Equal(t, "Hubspot", displayName("hubspot"))
}
