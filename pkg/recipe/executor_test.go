package recipe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blakesmith/ar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bincrafters/conan-glew/pkg/fetch"
	"github.com/bincrafters/conan-glew/pkg/metadata"
	"github.com/bincrafters/conan-glew/pkg/packaging"
	"github.com/bincrafters/conan-glew/pkg/settings"
)

// journal records the order phases were entered in
type journal struct {
	calls []string
}

type fakePrereqs struct {
	j   *journal
	err error
}

func (f *fakePrereqs) Run(_ context.Context, _ settings.Descriptor) error {
	f.j.calls = append(f.j.calls, "prereqs")
	return f.err
}

type fakeFetcher struct {
	j *journal
}

func (f *fakeFetcher) Fetch(_ context.Context, _ settings.Descriptor, workDir string) (string, error) {
	f.j.calls = append(f.j.calls, "fetch")
	src := filepath.Join(workDir, fetch.SourceSubfolder)
	if err := os.MkdirAll(filepath.Join(src, "include", "GL"), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(src, "include", "GL", "glew.h"), []byte("/* glew */"), 0644); err != nil {
		return "", err
	}
	return src, os.WriteFile(filepath.Join(src, "LICENSE.txt"), []byte("MIT"), 0644)
}

// fakeBuilder writes the given files below the artifact folder
type fakeBuilder struct {
	j       *journal
	files   []string
	archive []string
	err     error
}

func (f *fakeBuilder) Build(_ context.Context, key settings.MatrixKey, sourceDir, buildDir string) error {
	f.j.calls = append(f.j.calls, "build")
	if f.err != nil {
		return f.err
	}
	root := buildDir
	if key.Family() == settings.FamilyVisualStudio {
		root = sourceDir
	}
	for _, rel := range f.files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte("binary"), 0644); err != nil {
			return err
		}
	}
	for _, rel := range f.archive {
		if err := writeArchive(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return err
		}
	}
	return nil
}

func writeArchive(path string) error {
	var buf bytes.Buffer
	w := ar.NewWriter(&buf)
	if err := w.WriteGlobalHeader(); err != nil {
		return err
	}
	body := []byte("object")
	if err := w.WriteHeader(&ar.Header{Name: "glew.o", ModTime: time.Unix(0, 0), Mode: 0644, Size: int64(len(body))}); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func descriptor(s settings.Settings, shared bool) settings.Descriptor {
	d := settings.Default()
	d.Settings = s
	d.Options.Shared = shared
	return d
}

func linuxStatic() settings.Descriptor {
	return descriptor(settings.Settings{
		OS:              settings.OSLinux,
		Arch:            settings.ArchX86_64,
		Compiler:        settings.CompilerGCC,
		CompilerVersion: "9",
		BuildType:       settings.BuildRelease,
	}, false)
}

func windowsSharedDebug() settings.Descriptor {
	return descriptor(settings.Settings{
		OS:              settings.OSWindows,
		Arch:            settings.ArchX86,
		Compiler:        settings.CompilerVisualStudio,
		CompilerVersion: "15",
		BuildType:       settings.BuildDebug,
	}, true)
}

func options(t *testing.T, j *journal, b *fakeBuilder) *Options {
	t.Helper()
	dir := t.TempDir()
	discard := log.New(io.Discard, "", 0)
	return &Options{
		SourceFolder:  filepath.Join(dir, "build"),
		BuildFolder:   filepath.Join(dir, "build"),
		PackageFolder: filepath.Join(dir, "package"),
		Formats:       []metadata.Format{metadata.FormatTOML, metadata.FormatText},
		Prereqs:       &fakePrereqs{j: j},
		Fetcher:       &fakeFetcher{j: j},
		Builder:       b,
		Logger:        discard,
		Warn:          discard,
	}
}

func TestRunLinuxStaticRelease(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j, archive: []string{"lib/libGLEW.a"}})

	e := NewExecutor(linuxStatic(), opts)
	result, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"prereqs", "fetch", "build"}, j.calls)
	assert.Equal(t, StateDescribed, e.State())
	assert.Equal(t, StateDescribed, result.State)

	for _, f := range []string{"FindGLEW.cmake", "include/GL/glew.h", "licenses/LICENSE.txt", "lib/libGLEW.a"} {
		assert.True(t, result.Manifest.Has(f), f)
	}
	assert.Equal(t, []string{"GLEW", "GL"}, result.Info.Libs)
	assert.Empty(t, result.Info.Defines)
	assert.Empty(t, result.Info.ExeLinkFlags)

	pkgDir := filepath.Join(opts.PackageFolder, "Linux-gcc-9-x86_64-Release-static")
	assert.Equal(t, pkgDir, result.PackageDir)
	assert.Equal(t, pkgDir, result.Manifest.Root)
	assert.FileExists(t, filepath.Join(pkgDir, "lib", "libGLEW.a"))

	require.Len(t, result.MetadataFiles, 2)
	loaded, err := metadata.Load(filepath.Join(pkgDir, "glewinfo.toml"))
	require.NoError(t, err)
	assert.Equal(t, result.Info.Libs, loaded.Libs)
	assert.FileExists(t, filepath.Join(pkgDir, "glewinfo.txt"))
	assert.NoFileExists(t, filepath.Join(opts.PackageFolder, "glewinfo.toml"))
}

func TestRunKeepsMatrixKeysApart(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j, archive: []string{"lib/libGLEW.a"}})

	static, err := NewExecutor(linuxStatic(), opts).Run(context.Background())
	require.NoError(t, err)

	sharedOpts := *opts
	sharedOpts.Builder = &fakeBuilder{j: j, files: []string{"lib/libGLEW.so"}}
	desc := linuxStatic()
	desc.Options.Shared = true
	shared, err := NewExecutor(desc, &sharedOpts).Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, static.PackageDir, shared.PackageDir)
	assert.Equal(t, filepath.Join(opts.PackageFolder, "Linux-gcc-9-x86_64-Release-shared"), shared.PackageDir)

	assert.FileExists(t, filepath.Join(static.PackageDir, "lib", "libGLEW.a"))
	assert.NoFileExists(t, filepath.Join(static.PackageDir, "lib", "libGLEW.so"))
	assert.FileExists(t, filepath.Join(shared.PackageDir, "lib", "libGLEW.so"))
	assert.NoFileExists(t, filepath.Join(shared.PackageDir, "lib", "libGLEW.a"))
	assert.False(t, shared.Manifest.Has("lib/libGLEW.a"))

	loaded, err := metadata.Load(filepath.Join(shared.PackageDir, "glewinfo.toml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GLEW"}, loaded.Libs)
}

func TestRunReplacesPreviousPackage(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j, archive: []string{"lib/libGLEW.a"}})

	stale := filepath.Join(opts.PackageFolder, "Linux-gcc-9-x86_64-Release-static", "lib", "libGLEWmx.a")
	require.NoError(t, writeArchive(stale))

	result, err := NewExecutor(linuxStatic(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(result.PackageDir, "lib", "libGLEW.a"))
	assert.False(t, result.Manifest.Has("lib/libGLEWmx.a"))
}

func TestRunIgnoresPackageRootInsideBuildFolder(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j, archive: []string{"lib/libGLEW.a"}})
	opts.PackageFolder = filepath.Join(opts.BuildFolder, "package")

	other := filepath.Join(opts.PackageFolder, "Linux-gcc-9-x86_64-Debug-static", "lib", "libGLEWd.a")
	require.NoError(t, writeArchive(other))

	result, err := NewExecutor(linuxStatic(), opts).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Manifest.Has("lib/libGLEWd.a"))
	assert.FileExists(t, other)
}

func TestRunWindowsSharedDebug(t *testing.T) {
	j := &journal{}
	b := &fakeBuilder{j: j, files: []string{
		"lib/Debug/Win32/glew32d.lib",
		"bin/Debug/Win32/glew32d.dll",
		"bin/Debug/Win32/glew32d.pdb",
	}}
	opts := options(t, j, b)

	result, err := NewExecutor(windowsSharedDebug(), opts).Run(context.Background())
	require.NoError(t, err)

	for _, f := range []string{"lib/glew32d.lib", "bin/glew32d.dll", "bin/glew32d.pdb"} {
		assert.True(t, result.Manifest.Has(f), f)
	}
	assert.Equal(t, []string{"glew32d"}, result.Info.Libs)
	assert.Equal(t, result.SourceDir, result.ArtifactDir)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	j := &journal{}
	boom := errors.New("make: *** [all] Error 2")
	opts := options(t, j, &fakeBuilder{j: j, err: boom})

	e := NewExecutor(linuxStatic(), opts)
	result, err := e.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, result)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseBuild, phaseErr.Phase)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, e.State())

	assert.Equal(t, []string{"prereqs", "fetch", "build"}, j.calls)
	assert.NoDirExists(t, opts.PackageFolder)
}

func TestRunPrereqFailureSkipsFetch(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j})
	opts.Prereqs = &fakePrereqs{j: j, err: errors.New("apt-get: exit status 100")}

	_, err := NewExecutor(linuxStatic(), opts).Run(context.Background())

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhasePrereqs, phaseErr.Phase)
	assert.Equal(t, []string{"prereqs"}, j.calls)
}

func TestRunMissingArtifact(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j})

	_, err := NewExecutor(linuxStatic(), opts).Run(context.Background())
	assert.ErrorIs(t, err, packaging.ErrNoArtifacts)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhasePackage, phaseErr.Phase)
}

func TestRunArtifactNameMismatch(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j, archive: []string{"lib/libglew_s.a"}})

	_, err := NewExecutor(linuxStatic(), opts).Run(context.Background())
	assert.ErrorIs(t, err, ErrArtifactMismatch)

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhasePackageInfo, phaseErr.Phase)
}

func TestRunRejectsUnsupportedSettings(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j})

	desc := linuxStatic()
	desc.Settings.Compiler = settings.CompilerVisualStudio
	desc.Settings.CompilerVersion = "15"

	_, err := NewExecutor(desc, opts).Run(context.Background())
	assert.ErrorIs(t, err, settings.ErrUnsupported)
	assert.Empty(t, j.calls)
}

func TestRunSkipPhases(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j})

	src, err := (&fakeFetcher{j: &journal{}}).Fetch(context.Background(), settings.Default(), opts.SourceFolder)
	require.NoError(t, err)
	require.NoError(t, writeArchive(filepath.Join(opts.BuildFolder, "lib", "libGLEW.a")))

	opts.SkipPrereqs = true
	opts.SkipFetch = true
	opts.SkipBuild = true

	result, err := NewExecutor(linuxStatic(), opts).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, j.calls)
	assert.Equal(t, src, result.SourceDir)
	assert.True(t, result.Manifest.Has("lib/libGLEW.a"))
}

func TestRunSkipFetchWithoutSources(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j})
	opts.SkipFetch = true

	_, err := NewExecutor(linuxStatic(), opts).Run(context.Background())

	var phaseErr *PhaseError
	require.ErrorAs(t, err, &phaseErr)
	assert.Equal(t, PhaseSource, phaseErr.Phase)
}

func TestRunOnlyOnce(t *testing.T) {
	j := &journal{}
	opts := options(t, j, &fakeBuilder{j: j, archive: []string{"lib/libGLEW.a"}})

	e := NewExecutor(linuxStatic(), opts)
	_, err := e.Run(context.Background())
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateDescribed, e.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "init", StateInit.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "state(42)", State(42).String())
}
