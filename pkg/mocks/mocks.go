// Package mocks provides mock implementations of interfaces for testing.
// These follow Go best practices for test doubles.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/plugforge/plugforge/pkg/state"
	"github.com/plugforge/plugforge/pkg/types"
)

// MockScanner is a mock InstallationScanner
type MockScanner struct {
	mu            sync.Mutex
	Installations []types.Installation
	Err           error
	ScanCalls     int
}

// Scan returns the configured installations
func (m *MockScanner) Scan(ctx context.Context, roots []string) ([]types.Installation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScanCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Installations, nil
}

// MockLoader is a mock DescriptorLoader
type MockLoader struct {
	Path       string
	Descriptor *types.PluginDescriptor
	Err        error
	LoadCalls  int
}

// Load returns the configured descriptor
func (m *MockLoader) Load(path string) (string, *types.PluginDescriptor, error) {
	m.LoadCalls++
	if m.Err != nil {
		return "", nil, m.Err
	}
	return m.Path, m.Descriptor, nil
}

// MockResolver is a mock PlatformResolver that allows everything unless
// an explicit result is set
type MockResolver struct {
	Result    []types.Platform
	HasResult bool
}

// Filter returns the configured result or the requested list unchanged
func (m *MockResolver) Filter(installation types.Installation, requested []types.Platform) []types.Platform {
	if m.HasResult {
		return m.Result
	}
	return requested
}

// MockRunner is a mock BuildRunner recording every invocation
type MockRunner struct {
	mu       sync.Mutex
	Requests []types.BuildRequest
	// FailOn makes the Nth call (1-based) fail; zero never fails
	FailOn int
	Err    error
}

// Run records the request and fails when configured to
func (m *MockRunner) Run(ctx context.Context, req types.BuildRequest, descriptorPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.FailOn > 0 && len(m.Requests) == m.FailOn {
		return m.Err
	}
	return nil
}

// Calls returns the recorded requests
func (m *MockRunner) Calls() []types.BuildRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.BuildRequest, len(m.Requests))
	copy(out, m.Requests)
	return out
}

// MockCleaner is a mock OutputCleaner
type MockCleaner struct {
	mu       sync.Mutex
	Cleaned  []string
	Policies []types.CleanPolicy
	Err      error
}

// Clean records the cleaned directory
func (m *MockCleaner) Clean(outputDir string, policy types.CleanPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cleaned = append(m.Cleaned, outputDir)
	m.Policies = append(m.Policies, policy)
	return m.Err
}

// MockArchiver is a mock Archiver recording archived directories
type MockArchiver struct {
	mu       sync.Mutex
	Archived []string
	Err      error
}

// Archive records the directory
func (m *MockArchiver) Archive(dir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Archived = append(m.Archived, dir)
	if m.Err != nil {
		return "", m.Err
	}
	return dir + ".zip", nil
}

// Dirs returns the archived directories
func (m *MockArchiver) Dirs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Archived))
	copy(out, m.Archived)
	return out
}

// MockNotifier is a mock PackageNotifier
type MockNotifier struct {
	mu        sync.Mutex
	Successes []string
	Failures  []string
}

// NotifyPackageSuccess records a success
func (m *MockNotifier) NotifyPackageSuccess(version string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Successes = append(m.Successes, version)
}

// NotifyPackageFailure records a failure
func (m *MockNotifier) NotifyPackageFailure(version string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failures = append(m.Failures, version)
}

// MockHistory is a mock HistoryWriter
type MockHistory struct {
	mu      sync.Mutex
	Entries []state.BuildRecord
	Err     error
}

// Append records the entry
func (m *MockHistory) Append(record state.BuildRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, record)
	return m.Err
}
