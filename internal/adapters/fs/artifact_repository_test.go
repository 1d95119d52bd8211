package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/logging"
)

const (
	// init code returning a 10 byte runtime that answers 42
	testBytecode = "0x600a600c600039600a6000f3602a60005260206000f3"

	marketplaceABI = `[{"inputs":[],"stateMutability":"nonpayable","type":"constructor"},` +
		`{"inputs":[],"name":"listingPrice","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

	tokenABI = `[{"inputs":[{"internalType":"string","name":"symbol","type":"string"},{"internalType":"uint256","name":"supply","type":"uint256"}],"stateMutability":"nonpayable","type":"constructor"}]`
)

func foundryArtifact(source, name, abi, bytecode string) string {
	return `{"abi":` + abi + `,"bytecode":{"object":"` + bytecode + `","linkReferences":{}},` +
		`"deployedBytecode":{"object":"0x"},` +
		`"metadata":{"compiler":{"version":"0.8.24"},"settings":{"compilationTarget":{"` + source + `":"` + name + `"}}}}`
}

func hardhatArtifact(source, name, abi, bytecode string) string {
	return `{"_format":"hh-sol-artifact-1","contractName":"` + name + `","sourceName":"` + source + `",` +
		`"abi":` + abi + `,"bytecode":"` + bytecode + `","deployedBytecode":"0x","linkReferences":{}}`
}

type testProject struct {
	t    *testing.T
	root string
	out  string
}

func newTestProject(t *testing.T, outDir string) *testProject {
	t.Helper()
	root := t.TempDir()
	return &testProject{t: t, root: root, out: filepath.Join(root, outDir)}
}

func (p *testProject) write(rel, content string) string {
	p.t.Helper()
	path := filepath.Join(p.root, rel)
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(p.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (p *testProject) repository(checkStale bool) *ArtifactRepository {
	return NewArtifactRepository(&config.RuntimeConfig{
		ProjectRoot:  p.root,
		ArtifactsDir: p.out,
		CheckStale:   checkStale,
	}, logging.Discard())
}

func requireKind(t *testing.T, err error, sentinel error) *domain.DeploymentError {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel), "expected %v, got %v", sentinel, err)
	var de *domain.DeploymentError
	require.True(t, errors.As(err, &de))
	return de
}

func TestArtifactRepository_ResolveFoundry(t *testing.T) {
	p := newTestProject(t, "out")
	p.write("out/Marketplace.sol/Marketplace.json", foundryArtifact("src/Marketplace.sol", "Marketplace", marketplaceABI, testBytecode))
	p.write("out/build-info/abc.json", `{"id":"abc"}`)

	blueprint, err := p.repository(true).ResolveBlueprint(context.Background(), "Marketplace")
	require.NoError(t, err)

	assert.Equal(t, "Marketplace", blueprint.Name)
	assert.Equal(t, "src/Marketplace.sol", blueprint.SourcePath)
	assert.Equal(t, "src/Marketplace.sol:Marketplace", blueprint.Key())
	assert.Equal(t, models.ArtifactFormatFoundry, blueprint.Format)
	assert.NotEmpty(t, blueprint.Bytecode)
	assert.Contains(t, blueprint.ABI.Methods, "listingPrice")
	assert.Empty(t, blueprint.ConstructorInputs())
}

func TestArtifactRepository_ResolveHardhat(t *testing.T) {
	p := newTestProject(t, "artifacts")
	p.write("artifacts/contracts/Token.sol/Token.json", hardhatArtifact("contracts/Token.sol", "Token", tokenABI, testBytecode))
	p.write("artifacts/contracts/Token.sol/Token.dbg.json", `{"_format":"hh-sol-dbg-1","buildInfo":"../../build-info/x.json"}`)

	blueprint, err := p.repository(true).ResolveBlueprint(context.Background(), "Token")
	require.NoError(t, err)

	assert.Equal(t, models.ArtifactFormatHardhat, blueprint.Format)
	assert.Equal(t, "contracts/Token.sol", blueprint.SourcePath)
	assert.Len(t, blueprint.ConstructorInputs(), 2)
	assert.Equal(t, "constructor(string symbol, uint256 supply)", blueprint.ConstructorSignature())
}

func TestArtifactRepository_NotFound(t *testing.T) {
	p := newTestProject(t, "out")
	p.write("out/Marketplace.sol/Marketplace.json", foundryArtifact("src/Marketplace.sol", "Marketplace", marketplaceABI, testBytecode))
	repo := p.repository(true)

	t.Run("unknown name suggests close matches", func(t *testing.T) {
		_, err := repo.ResolveBlueprint(context.Background(), "Market")
		de := requireKind(t, err, domain.ErrBlueprintNotFound)
		var notFound domain.NoBlueprintMatchErr
		require.True(t, errors.As(de, &notFound))
		assert.Equal(t, []string{"Marketplace"}, notFound.Suggestions)
	})

	t.Run("unrelated name", func(t *testing.T) {
		_, err := repo.ResolveBlueprint(context.Background(), "Zzz")
		requireKind(t, err, domain.ErrBlueprintNotFound)
	})

	t.Run("wrong source path", func(t *testing.T) {
		_, err := repo.ResolveBlueprint(context.Background(), "src/Other.sol:Marketplace")
		de := requireKind(t, err, domain.ErrBlueprintNotFound)
		assert.Contains(t, de.Error(), "Marketplace.sol:Marketplace")
	})

	t.Run("empty reference", func(t *testing.T) {
		_, err := repo.ResolveBlueprint(context.Background(), "")
		requireKind(t, err, domain.ErrBlueprintNotFound)
	})

	t.Run("missing build output", func(t *testing.T) {
		missing := newTestProject(t, "out").repository(true)
		_, err := missing.ResolveBlueprint(context.Background(), "Marketplace")
		de := requireKind(t, err, domain.ErrBlueprintNotFound)
		assert.Contains(t, de.Error(), "compile the project first")
	})
}

func TestArtifactRepository_Ambiguous(t *testing.T) {
	p := newTestProject(t, "out")
	p.write("out/Token.sol/Token.json", foundryArtifact("src/Token.sol", "Token", tokenABI, testBytecode))
	p.write("out/MockToken.sol/Token.json", foundryArtifact("test/mocks/MockToken.sol", "Token", tokenABI, testBytecode))
	repo := p.repository(true)

	_, err := repo.ResolveBlueprint(context.Background(), "Token")
	de := requireKind(t, err, domain.ErrBlueprintNotFound)
	var ambiguous domain.AmbiguousBlueprintErr
	require.True(t, errors.As(de, &ambiguous))
	assert.ElementsMatch(t, []string{"src/Token.sol:Token", "test/mocks/MockToken.sol:Token"}, ambiguous.Matches)

	t.Run("full path disambiguates", func(t *testing.T) {
		blueprint, err := repo.ResolveBlueprint(context.Background(), "src/Token.sol:Token")
		require.NoError(t, err)
		assert.Equal(t, "src/Token.sol", blueprint.SourcePath)
	})

	t.Run("path suffix disambiguates", func(t *testing.T) {
		blueprint, err := repo.ResolveBlueprint(context.Background(), "MockToken.sol:Token")
		require.NoError(t, err)
		assert.Equal(t, "test/mocks/MockToken.sol", blueprint.SourcePath)
	})
}

func TestArtifactRepository_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		artifact string
		contains string
	}{
		{
			name:     "interface without bytecode",
			artifact: foundryArtifact("src/Broken.sol", "Broken", marketplaceABI, "0x"),
			contains: "no bytecode",
		},
		{
			name:     "unlinked library",
			artifact: foundryArtifact("src/Broken.sol", "Broken", marketplaceABI, "0x6080__$4a3b2c1d$__6040"),
			contains: "unlinked library",
		},
		{
			name:     "malformed bytecode",
			artifact: foundryArtifact("src/Broken.sol", "Broken", marketplaceABI, "0xzz"),
			contains: "malformed bytecode",
		},
		{
			name:     "missing abi",
			artifact: `{"bytecode":{"object":"` + testBytecode + `"}}`,
			contains: "no ABI",
		},
		{
			name:     "malformed abi",
			artifact: foundryArtifact("src/Broken.sol", "Broken", `[{"type":"function","name":"f","inputs":[{"name":"x","type":"notatype"}]}]`, testBytecode),
			contains: "malformed ABI",
		},
		{
			name:     "not json",
			artifact: `{"abi": [`,
			contains: "malformed artifact",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProject(t, "out")
			path := p.write("out/Broken.sol/Broken.json", tt.artifact)

			_, err := p.repository(true).ResolveBlueprint(context.Background(), "Broken")
			de := requireKind(t, err, domain.ErrBlueprintInvalid)
			assert.Contains(t, de.Error(), tt.contains)
			assert.Equal(t, path, de.Detail["artifact"])
		})
	}
}

func TestArtifactRepository_Stale(t *testing.T) {
	p := newTestProject(t, "out")
	artifact := p.write("out/Marketplace.sol/Marketplace.json", foundryArtifact("src/Marketplace.sol", "Marketplace", marketplaceABI, testBytecode))
	source := p.write("src/Marketplace.sol", "contract Marketplace {}\n")

	compiled := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(artifact, compiled, compiled))
	require.NoError(t, os.Chtimes(source, time.Now(), time.Now()))

	t.Run("stale artifact is rejected", func(t *testing.T) {
		_, err := p.repository(true).ResolveBlueprint(context.Background(), "Marketplace")
		de := requireKind(t, err, domain.ErrBlueprintInvalid)
		assert.Contains(t, de.Error(), "stale")
	})

	t.Run("check can be disabled", func(t *testing.T) {
		blueprint, err := p.repository(false).ResolveBlueprint(context.Background(), "Marketplace")
		require.NoError(t, err)
		assert.True(t, blueprint.Stale)
	})

	t.Run("fresh artifact is accepted", func(t *testing.T) {
		older := time.Now().Add(-2 * time.Hour)
		require.NoError(t, os.Chtimes(source, older, older))

		blueprint, err := p.repository(true).ResolveBlueprint(context.Background(), "Marketplace")
		require.NoError(t, err)
		assert.False(t, blueprint.Stale)
	})
}

func TestArtifactRepository_ListBlueprints(t *testing.T) {
	p := newTestProject(t, "out")
	p.write("out/Marketplace.sol/Marketplace.json", foundryArtifact("src/Marketplace.sol", "Marketplace", marketplaceABI, testBytecode))
	p.write("out/Token.sol/Token.0.8.24.json", foundryArtifact("src/Token.sol", "Token", tokenABI, testBytecode))
	p.write("out/IERC20.sol/IERC20.json", foundryArtifact("src/IERC20.sol", "IERC20", "[]", "0x"))
	p.write("out/build-info/abc.json", `{"id":"abc"}`)

	blueprints, err := p.repository(true).ListBlueprints(context.Background())
	require.NoError(t, err)

	var names []string
	for _, b := range blueprints {
		names = append(names, b.Name)
	}
	assert.ElementsMatch(t, []string{"Marketplace", "Token"}, names)
}

func TestArtifactRepository_CompilerVersions(t *testing.T) {
	p := newTestProject(t, "out")
	older := p.write("out/Marketplace.sol/Marketplace.0.8.19.json", foundryArtifact("src/Marketplace.sol", "Marketplace", marketplaceABI, testBytecode))
	newer := p.write("out/Marketplace.sol/Marketplace.0.8.24.json", foundryArtifact("src/Marketplace.sol", "Marketplace", marketplaceABI, testBytecode))
	// the 0.8.24 build is older on disk, so mtime alone would pick 0.8.19
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(newer, past, past))
	repo := p.repository(false)

	for _, ref := range []string{"Marketplace", "src/Marketplace.sol:Marketplace", "Marketplace.sol:Marketplace"} {
		t.Run("newest compiler for "+ref, func(t *testing.T) {
			blueprint, err := repo.ResolveBlueprint(context.Background(), ref)
			require.NoError(t, err)
			assert.Equal(t, newer, blueprint.ArtifactPath)
			assert.Equal(t, "src/Marketplace.sol:Marketplace", blueprint.Key())
		})
	}

	t.Run("version qualified name", func(t *testing.T) {
		blueprint, err := repo.ResolveBlueprint(context.Background(), "Marketplace.0.8.19")
		require.NoError(t, err)
		assert.Equal(t, older, blueprint.ArtifactPath)

		blueprint, err = repo.ResolveBlueprint(context.Background(), "src/Marketplace.sol:Marketplace.0.8.24")
		require.NoError(t, err)
		assert.Equal(t, newer, blueprint.ArtifactPath)
	})

	t.Run("unknown version", func(t *testing.T) {
		_, err := repo.ResolveBlueprint(context.Background(), "Marketplace.0.7.6")
		requireKind(t, err, domain.ErrBlueprintNotFound)
	})
}

func TestArtifactRepository_AmbiguityListsEachSourceOnce(t *testing.T) {
	p := newTestProject(t, "out")
	p.write("out/Token.sol/Token.0.8.19.json", foundryArtifact("src/Token.sol", "Token", tokenABI, testBytecode))
	p.write("out/Token.sol/Token.0.8.24.json", foundryArtifact("src/Token.sol", "Token", tokenABI, testBytecode))
	p.write("out/LegacyToken.sol/Token.json", foundryArtifact("src/legacy/Token.sol", "Token", tokenABI, testBytecode))

	_, err := p.repository(false).ResolveBlueprint(context.Background(), "Token")
	de := requireKind(t, err, domain.ErrBlueprintNotFound)
	var ambiguous domain.AmbiguousBlueprintErr
	require.True(t, errors.As(de, &ambiguous))
	assert.ElementsMatch(t, []string{"src/Token.sol:Token", "src/legacy/Token.sol:Token"}, ambiguous.Matches)
}

func TestArtifactRepository_BrokenArtifactOfOtherSource(t *testing.T) {
	p := newTestProject(t, "out")
	p.write("out/A.sol/Token.json", `{"abi": [`)

	t.Run("qualified reference is not found", func(t *testing.T) {
		_, err := p.repository(false).ResolveBlueprint(context.Background(), "src/B.sol:Token")
		requireKind(t, err, domain.ErrBlueprintNotFound)
	})

	t.Run("matching source reports the broken artifact", func(t *testing.T) {
		_, err := p.repository(false).ResolveBlueprint(context.Background(), "src/A.sol:Token")
		requireKind(t, err, domain.ErrBlueprintInvalid)
	})

	t.Run("bare name reports the broken artifact", func(t *testing.T) {
		_, err := p.repository(false).ResolveBlueprint(context.Background(), "Token")
		requireKind(t, err, domain.ErrBlueprintInvalid)
	})
}
