// Package report builds filtered order listings and renders them as CSV,
// paginated PDF, dashboard metrics or the plain-text digest fed to the
// summarizer.
package report
