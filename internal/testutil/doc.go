// Package testutil holds deterministic fixtures shared by package tests and
// the scenario harness.
package testutil
