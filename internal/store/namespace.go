package store

import "strings"

// defaultNamespace is the label statistics use for the unnamed namespace.
const defaultNamespace = "default"

// nsDelimiter separates namespace from key in a flattened full key.
//
// A user key that itself contains nsDelimiter can collide with another
// (namespace, key) pair once flattened. This is permitted; the store
// does not defend against it (see DESIGN.md).
const nsDelimiter = ":"

// fullKey flattens (namespace, key) into the single address the LRU index
// uses (WAL records keep key and namespace as separate fields). An empty
// namespace flattens to the bare key.
func fullKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + nsDelimiter + key
}

// splitFullKey recovers (namespace, key) from a flattened full key.
// Keys with no delimiter belong to the default (unnamed) namespace.
func splitFullKey(full string) (namespace, key string) {
	idx := strings.Index(full, nsDelimiter)
	if idx < 0 {
		return "", full
	}
	return full[:idx], full[idx+1:]
}

// namespaceLabel returns the statistics bucket name for a namespace,
// mapping the unnamed namespace to the literal "default".
func namespaceLabel(namespace string) string {
	if namespace == "" {
		return defaultNamespace
	}
	return namespace
}

// namespacePrefix is the prefix every full key in namespace must have.
func namespacePrefix(namespace string) string {
	return namespace + nsDelimiter
}
