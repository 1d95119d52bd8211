package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"golang.org/x/mod/semver"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/domain/models"
	"github.com/trebuchet-org/sling/internal/usecase"
)

const maxSuggestions = 3

// ArtifactRepository reads contract blueprints from a Foundry or Hardhat
// build output directory. It never touches the network.
type ArtifactRepository struct {
	projectRoot  string
	artifactsDir string
	checkStale   bool
	log          *slog.Logger
}

// artifactFile is an artifact JSON file found in the build output
type artifactFile struct {
	path    string
	name    string // contract name, from the file name
	version string // compiler version suffix of Name.0.8.19.json, empty otherwise
	dir     string // directory relative to the build output, e.g. "Counter.sol"
}

// match is a loaded candidate for a reference
type match struct {
	file      artifactFile
	blueprint *models.Blueprint
}

// NewArtifactRepository creates a repository over the configured build output
func NewArtifactRepository(cfg *config.RuntimeConfig, log *slog.Logger) *ArtifactRepository {
	return &ArtifactRepository{
		projectRoot:  cfg.ProjectRoot,
		artifactsDir: cfg.ArtifactsDir,
		checkStale:   cfg.CheckStale,
		log:          log,
	}
}

// ResolveBlueprint resolves "Name" or "path/Source.sol:Name" to a blueprint.
// The name may carry a compiler version ("Name.0.8.24") to pick one of
// several builds; without it the build of the newest compiler wins.
func (r *ArtifactRepository) ResolveBlueprint(ctx context.Context, ref string) (*models.Blueprint, error) {
	sourceRef, qualified := splitRef(ref)
	name, version, _ := strings.Cut(qualified, ".")
	if name == "" {
		return nil, domain.NewDeploymentError(domain.KindBlueprintNotFound,
			fmt.Errorf("empty contract reference %q", ref))
	}

	files, err := r.scan()
	if err != nil {
		return nil, err
	}

	candidates := lo.Filter(files, func(f artifactFile, _ int) bool {
		return f.name == name && (version == "" || f.version == version)
	})

	var matches []match
	var loadErrs []error
	for _, f := range candidates {
		blueprint, err := r.load(f)
		if err != nil {
			// Broken artifacts of other sources do not hide a missing one
			if sourceRef == "" || matchesDir(f, sourceRef) {
				loadErrs = append(loadErrs, err)
			}
			continue
		}
		if sourceRef != "" && !matchesSource(blueprint, f, sourceRef) {
			continue
		}
		matches = append(matches, match{file: f, blueprint: blueprint})
	}

	keys := lo.Uniq(lo.Map(matches, func(m match, _ int) string { return m.blueprint.Key() }))
	if len(keys) == 1 && len(matches) > 1 {
		matches = []match{r.newestBuild(matches)}
	}

	switch {
	case len(matches) == 1:
		blueprint := matches[0].blueprint
		if r.checkStale && blueprint.Stale {
			return nil, domain.NewDeploymentError(domain.KindBlueprintInvalid,
				fmt.Errorf("artifact for %s is stale: %s changed after it was compiled, rebuild the project", blueprint.Name, blueprint.SourcePath)).
				WithDetail("artifact", blueprint.ArtifactPath)
		}
		return blueprint, nil

	case len(matches) > 1:
		return nil, domain.NewDeploymentError(domain.KindBlueprintNotFound,
			domain.AmbiguousBlueprintErr{Ref: ref, Matches: keys})

	case len(loadErrs) > 0:
		// The name exists but no artifact for it could be used
		return nil, loadErrs[0]

	default:
		var suggestions []string
		if len(candidates) > 0 {
			// Right name, wrong path
			suggestions = lo.Uniq(lo.Map(candidates, func(f artifactFile, _ int) string { return f.dir + ":" + f.name }))
		} else {
			names := lo.Uniq(lo.Map(files, func(f artifactFile, _ int) string { return f.name }))
			suggestions = suggest(name, names)
		}
		return nil, domain.NewDeploymentError(domain.KindBlueprintNotFound,
			domain.NoBlueprintMatchErr{Ref: ref, Suggestions: suggestions}).
			WithDetail("artifacts", r.artifactsDir)
	}
}

// ListBlueprints returns every deployable artifact. Unusable artifacts
// (interfaces, abstract contracts, malformed files) are skipped.
func (r *ArtifactRepository) ListBlueprints(ctx context.Context) ([]*models.Blueprint, error) {
	files, err := r.scan()
	if err != nil {
		return nil, err
	}

	var blueprints []*models.Blueprint
	for _, f := range files {
		blueprint, err := r.load(f)
		if err != nil {
			r.log.Debug("skipping artifact", "path", f.path, "error", err)
			continue
		}
		blueprints = append(blueprints, blueprint)
	}

	return blueprints, nil
}

// scan lists the artifact files of the build output
func (r *ArtifactRepository) scan() ([]artifactFile, error) {
	if info, err := os.Stat(r.artifactsDir); err != nil || !info.IsDir() {
		return nil, domain.NewDeploymentError(domain.KindBlueprintNotFound,
			fmt.Errorf("build output directory %s not found, compile the project first", r.artifactsDir))
	}

	var files []artifactFile
	err := filepath.WalkDir(r.artifactsDir, func(file string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}

		base := d.Name()
		if filepath.Ext(base) != ".json" || strings.HasSuffix(base, ".dbg.json") {
			return nil
		}

		rel, err := filepath.Rel(r.artifactsDir, filepath.Dir(file))
		if err != nil {
			return err
		}

		// Foundry writes one file per compiler version as Name.0.8.19.json
		name, version, _ := strings.Cut(strings.TrimSuffix(base, ".json"), ".")

		files = append(files, artifactFile{
			path:    file,
			name:    name,
			version: version,
			dir:     filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, domain.NewDeploymentError(domain.KindBlueprintNotFound,
			fmt.Errorf("failed to read build output %s: %w", r.artifactsDir, err))
	}

	return files, nil
}

// load parses and validates a single artifact
func (r *ArtifactRepository) load(f artifactFile) (*models.Blueprint, error) {
	invalid := func(format string, args ...any) error {
		return domain.NewDeploymentError(domain.KindBlueprintInvalid, fmt.Errorf(format, args...)).
			WithDetail("artifact", f.path)
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return nil, invalid("failed to stat artifact: %w", err)
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, invalid("failed to read artifact: %w", err)
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, invalid("malformed artifact %s: %w", filepath.Base(f.path), err)
	}

	source, name := artifact.Target()
	if name == "" {
		name = f.name
	}

	code := strings.TrimSpace(artifact.Bytecode.Object)
	if code == "" || code == "0x" {
		return nil, invalid("artifact for %s has no bytecode (interface or abstract contract?)", name)
	}
	if strings.Contains(code, "__") {
		return nil, invalid("artifact for %s has unlinked library references", name)
	}
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	bytecode, err := hexutil.Decode(code)
	if err != nil {
		return nil, invalid("artifact for %s has malformed bytecode: %w", name, err)
	}

	rawABI := bytes.TrimSpace(artifact.ABI)
	if len(rawABI) == 0 || bytes.Equal(rawABI, []byte("null")) {
		return nil, invalid("artifact for %s has no ABI", name)
	}
	parsedABI, err := abi.JSON(bytes.NewReader(rawABI))
	if err != nil {
		return nil, invalid("artifact for %s has malformed ABI: %w", name, err)
	}

	blueprint := &models.Blueprint{
		Name:         name,
		SourcePath:   source,
		ArtifactPath: f.path,
		Format:       artifact.Kind(),
		Bytecode:     bytecode,
		RawABI:       json.RawMessage(rawABI),
		ABI:          parsedABI,
		CompiledAt:   info.ModTime(),
	}

	if source != "" {
		if src, err := os.Stat(filepath.Join(r.projectRoot, source)); err == nil && src.ModTime().After(info.ModTime()) {
			blueprint.Stale = true
		}
	}

	return blueprint, nil
}

func splitRef(ref string) (source, name string) {
	ref = strings.TrimSpace(ref)
	if idx := strings.LastIndex(ref, ":"); idx != -1 {
		return ref[:idx], ref[idx+1:]
	}
	return "", ref
}

// newestBuild picks among builds of the same contract: the highest compiler
// version, then the most recently written artifact.
func (r *ArtifactRepository) newestBuild(matches []match) match {
	best := matches[0]
	for _, m := range matches[1:] {
		cmp := semver.Compare("v"+m.file.version, "v"+best.file.version)
		if cmp > 0 || (cmp == 0 && m.blueprint.CompiledAt.After(best.blueprint.CompiledAt)) {
			best = m
		}
	}
	r.log.Debug("several builds of contract, using newest",
		"contract", best.blueprint.Key(),
		"builds", len(matches),
		"artifact", best.file.path)
	return best
}

// matchesDir reports whether the artifact directory can belong to sourceRef.
// Foundry names the directory after the source file, Hardhat mirrors the path.
func matchesDir(f artifactFile, sourceRef string) bool {
	sourceRef = filepath.ToSlash(filepath.Clean(sourceRef))
	return f.dir == sourceRef ||
		f.dir == path.Base(sourceRef) ||
		strings.HasSuffix(f.dir, "/"+sourceRef) ||
		strings.HasSuffix(sourceRef, "/"+f.dir)
}

// matchesSource reports whether a "path:Name" reference selects the blueprint.
// The path may be the full source path, a suffix of it, or the artifact directory.
func matchesSource(b *models.Blueprint, f artifactFile, sourceRef string) bool {
	sourceRef = filepath.ToSlash(filepath.Clean(sourceRef))
	if b.SourcePath != "" {
		source := filepath.ToSlash(b.SourcePath)
		if source == sourceRef || strings.HasSuffix(source, "/"+sourceRef) {
			return true
		}
	}
	return f.dir == sourceRef || strings.HasSuffix(f.dir, "/"+sourceRef)
}

func suggest(name string, names []string) []string {
	matches := fuzzy.Find(name, names)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return lo.Map(matches, func(m fuzzy.Match, _ int) string { return m.Str })
}

var _ usecase.BlueprintResolver = (*ArtifactRepository)(nil)
