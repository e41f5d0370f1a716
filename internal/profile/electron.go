package profile

import "runtime"

// ElectronBuilderProfile implements Profile for electron-builder projects.
type ElectronBuilderProfile struct {
	goos string
}

// NewElectronBuilderProfile creates the electron-builder profile for this host.
func NewElectronBuilderProfile() *ElectronBuilderProfile {
	return &ElectronBuilderProfile{goos: runtime.GOOS}
}

// NewElectronBuilderProfileForOS creates the profile for another OS (for testing).
func NewElectronBuilderProfileForOS(goos string) *ElectronBuilderProfile {
	return &ElectronBuilderProfile{goos: goos}
}

func (p *ElectronBuilderProfile) ID() string {
	return "electron-builder"
}

func (p *ElectronBuilderProfile) Name() string {
	return "electron-builder"
}

// Targets returns electron-builder's output directories.
// app-builder keeps unpacked resources under release/ and dist/ open while it signs.
func (p *ElectronBuilderProfile) Targets() []TargetSpec {
	return []TargetSpec{
		{Dir: "release", Holders: []string{"app-builder"}},
		{Dir: "dist", Holders: []string{"app-builder"}},
		{Dir: "dist-electron"},
	}
}

// ProcessPatterns returns the packaged app plus the builder's helpers.
func (p *ElectronBuilderProfile) ProcessPatterns(appName string) []string {
	patterns := []string{appName, "app-builder", "electron"}

	switch p.goos {
	case "windows":
		// NSIS installer helpers and the UAC elevation shim.
		patterns = append(patterns, "elevate", "Uninstall *")
	case "darwin":
		patterns = append(patterns, "Electron Helper*")
		if appName != "" {
			patterns = append(patterns, appName+" Helper*")
		}
	}
	return patterns
}

// ElectronForgeProfile implements Profile for electron-forge projects.
type ElectronForgeProfile struct {
	goos string
}

// NewElectronForgeProfile creates the electron-forge profile for this host.
func NewElectronForgeProfile() *ElectronForgeProfile {
	return &ElectronForgeProfile{goos: runtime.GOOS}
}

// NewElectronForgeProfileForOS creates the profile for another OS (for testing).
func NewElectronForgeProfileForOS(goos string) *ElectronForgeProfile {
	return &ElectronForgeProfile{goos: goos}
}

func (p *ElectronForgeProfile) ID() string {
	return "electron-forge"
}

func (p *ElectronForgeProfile) Name() string {
	return "Electron Forge"
}

// Targets returns forge's make output and bundler caches.
func (p *ElectronForgeProfile) Targets() []TargetSpec {
	return []TargetSpec{
		{Dir: "out"},
		{Dir: ".webpack", Holders: []string{"node"}},
		{Dir: ".vite", Holders: []string{"node"}},
	}
}

// ProcessPatterns returns the packaged app, electron and the dev-server node process.
func (p *ElectronForgeProfile) ProcessPatterns(appName string) []string {
	patterns := []string{appName, "electron", "node"}
	if p.goos == "darwin" {
		patterns = append(patterns, "Electron Helper*")
	}
	return patterns
}

// CustomProfile has no built-in targets; everything comes from configuration.
type CustomProfile struct{}

// NewCustomProfile creates the empty custom profile.
func NewCustomProfile() *CustomProfile {
	return &CustomProfile{}
}

func (p *CustomProfile) ID() string {
	return "custom"
}

func (p *CustomProfile) Name() string {
	return "Custom"
}

func (p *CustomProfile) Targets() []TargetSpec {
	return nil
}

func (p *CustomProfile) ProcessPatterns(appName string) []string {
	return []string{appName}
}
