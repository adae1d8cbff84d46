// Package testutil provides filesystem fixtures for testing lnedit components.
//
// Link tests run against a real filesystem rooted in t.TempDir(), because
// the behavior under test (rename over a link, dangling targets, relative
// stored values) is exactly what an in-memory filesystem cannot model.
package testutil
