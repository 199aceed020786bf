package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullKey_WithAndWithoutNamespace(t *testing.T) {
	assert.Equal(t, "key1", fullKey("", "key1"))
	assert.Equal(t, "app1:key1", fullKey("app1", "key1"))
}

func TestSplitFullKey(t *testing.T) {
	ns, key := splitFullKey("app1:key1")
	assert.Equal(t, "app1", ns)
	assert.Equal(t, "key1", key)

	ns, key = splitFullKey("key1")
	assert.Equal(t, "", ns)
	assert.Equal(t, "key1", key)
}

func TestNamespaceLabel_DefaultsUnnamedToDefault(t *testing.T) {
	assert.Equal(t, "default", namespaceLabel(""))
	assert.Equal(t, "app1", namespaceLabel("app1"))
}

func TestNamespacePrefix(t *testing.T) {
	assert.Equal(t, "app1:", namespacePrefix("app1"))
}
