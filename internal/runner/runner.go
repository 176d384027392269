// Package runner drives the core, geo file and config updates.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valksor/go-cm/internal/config"
	"github.com/valksor/go-cm/internal/display"
	"github.com/valksor/go-cm/internal/log"
	"github.com/valksor/go-cm/internal/platform"
	"github.com/valksor/go-cm/internal/update"
)

// ErrInstallDirMissing is reported when the core install directory does not exist.
var ErrInstallDirMissing = errors.New("runner: install directory does not exist")

// ErrUnsafeName is returned for config entries whose name is not a plain file name.
var ErrUnsafeName = errors.New("runner: config entry name is not a plain file name")

// Runner performs updates for one configuration.
type Runner struct {
	cfg        *config.Config
	resolver   update.Resolver
	downloader *update.Downloader
	installer  *update.Installer
	target     platform.Target
	userAgent  string
	out        io.Writer
}

// Option is a functional option for configuring a Runner.
type Option func(*Runner)

// WithOutput sets where progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithResolver replaces the release resolver.
func WithResolver(res update.Resolver) Option {
	return func(r *Runner) {
		r.resolver = res
	}
}

// WithTarget overrides the detected platform.
func WithTarget(t platform.Target) Option {
	return func(r *Runner) {
		r.target = t
	}
}

// WithUserAgent sets the User-Agent for all requests.
func WithUserAgent(ua string) Option {
	return func(r *Runner) {
		r.userAgent = ua
	}
}

// New creates a runner for cfg. Unless WithResolver is given, releases are
// resolved on GitHub or GitLab using the credentials in cfg.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	r := &Runner{
		cfg:       cfg,
		installer: update.NewInstaller(),
		target:    platform.Detect(),
		userAgent: update.DefaultUserAgent,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.downloader = update.NewDownloader(r.userAgent)

	if r.resolver == nil {
		gh, err := update.NewGitHubResolver(
			update.WithUserAgent(r.userAgent),
			update.WithToken(cfg.GitHubToken),
		)
		if err != nil {
			return nil, err
		}
		gl, err := update.NewGitLabResolver(
			update.WithUserAgent(r.userAgent),
			update.WithToken(cfg.GitLabToken),
			update.WithBaseURL(cfg.GitLabURL),
		)
		if err != nil {
			return nil, err
		}
		r.resolver = update.NewRouter(gh, gl)
	}

	return r, nil
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *Runner) line(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// UpdateCores installs the newest pre-release of every configured core, or
// only of the core named by only (case-insensitive) when it is non-empty.
// Failures are recorded per core; the remaining cores are still processed.
func (r *Runner) UpdateCores(ctx context.Context, only string) *Summary {
	sum := &Summary{Kind: KindCore}

	binDir := r.cfg.BinDir()
	if info, err := os.Stat(binDir); err != nil || !info.IsDir() {
		sum.Err = fmt.Errorf("%w: %s", ErrInstallDirMissing, binDir)
		r.line(display.ErrorMsg("install directory does not exist: %s", binDir))

		return sum
	}

	only = strings.ToLower(strings.TrimSpace(only))
	names := r.cfg.CoreNames()
	if only != "" {
		if _, ok := r.cfg.Cores[only]; !ok {
			sum.Warning = fmt.Sprintf("no core named %q in config", only)
			r.line(display.WarningMsg("%s", sum.Warning))

			return sum
		}
		names = []string{only}
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			sum.Err = err
			log.WarnContext(ctx, "update interrupted", "kind", string(sum.Kind), log.Err(err))

			break
		}
		sum.add(r.updateCore(ctx, name, r.cfg.Cores[name]))
	}

	r.tally(sum)

	return sum
}

func (r *Runner) updateCore(ctx context.Context, name string, core config.Core) ItemResult {
	item := ItemResult{Kind: KindCore, Name: name, Path: r.cfg.CorePath(core)}
	item.OldSize = update.FileSize(item.Path)
	item.NewSize = item.OldSize
	logger := log.With(log.Item(string(KindCore), name)...)

	r.line("")
	r.line(display.InfoMsg("%s (pre-release)...", display.Bold(name)))

	if !update.KnownCore(name) {
		item.Err = fmt.Errorf("%w: no asset naming rule for %s", update.ErrAssetNotFound, name)
		r.line(display.IndentOne + display.ErrorMsg("no asset naming rule for %s", name))

		return item
	}

	rel, err := r.resolver.LatestPrerelease(ctx, core.Repo)
	if err != nil {
		item.Err = err
		logger.Debug("resolve failed", log.Err(err))
		r.line(display.IndentOne + display.ErrorMsg("fetch release failed: %v", err))

		return item
	}
	item.Tag = rel.TagName
	log.DebugContext(ctx, "release resolved", "core", name, "tag", rel.TagName, "url", rel.HTMLURL)

	tag := display.Cyan(rel.TagName)
	if ch := rel.Channel(); ch != "" {
		tag += " " + display.Muted("("+ch+")")
	}
	r.printf("%s", display.KeyValue("release", tag))
	if !rel.PublishedAt.IsZero() {
		r.printf("%s", display.KeyValue("date", display.Timestamp(rel.PublishedAt)))
	}

	asset, ok := update.SelectAsset(rel, name, r.target)
	if !ok {
		item.Err = fmt.Errorf("%w: %s", update.ErrAssetNotFound, r.target)
		r.line(display.IndentOne + display.ErrorMsg("no %s asset found", r.target))

		return item
	}
	item.Asset = asset.Name
	if asset.Size > 0 {
		r.printf("%s", display.KeyValue("asset", asset.Name+" "+display.Muted("("+display.FormatMB(asset.Size)+")")))
	} else {
		r.printf("%s", display.KeyValue("asset", asset.Name))
	}

	r.line(display.IndentOne + display.InfoMsg("downloading..."))
	dctx, cancel := context.WithTimeout(ctx, update.BinaryTimeout)
	defer cancel()

	archive, err := r.downloader.DownloadTemp(dctx, asset.URL, asset.Name)
	if err != nil {
		item.Err = err
		r.line(display.IndentOne + display.ErrorMsg("failed: %v", err))

		return item
	}
	defer func() { _ = os.Remove(archive) }()

	res, err := r.installer.Install(archive, item.Path, core.BinaryName)
	if res != nil {
		item.OldSize, item.NewSize = res.OldSize, res.NewSize
		item.InstalledAt = res.InstalledAt
	}
	if err != nil {
		item.Err = err
		logger.Debug("install failed", "asset", asset.Name, log.Err(err))
		r.line(display.IndentOne + display.ErrorMsg("failed: %v", err))

		return item
	}

	logger.Debug("installed", "tag", rel.TagName, "asset", asset.Name, "path", item.Path)
	r.line(display.IndentOne + display.SuccessMsg("installed → %s", item.Path))
	r.printf("%ssize: %s | time: %s\n", display.IndentTwo,
		display.SizeChange(item.OldSize, item.NewSize), display.Timestamp(item.InstalledAt))

	return item
}

// UpdateGeoFiles downloads every configured geo file into the install directory.
func (r *Runner) UpdateGeoFiles(ctx context.Context) *Summary {
	sum := &Summary{Kind: KindGeo}

	names := r.cfg.GeoFileNames()
	if len(names) == 0 {
		sum.Warning = "no geofiles configured"
		r.line(display.WarningMsg("%s", sum.Warning))

		return sum
	}

	r.line("")
	r.line(display.InfoMsg("updating geofiles → %s", r.cfg.BinDir()))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			sum.Err = err
			log.WarnContext(ctx, "update interrupted", "kind", string(sum.Kind), log.Err(err))

			break
		}

		item := ItemResult{Kind: KindGeo, Name: name, Path: filepath.Join(r.cfg.BinDir(), name)}
		item.OldSize = update.FileSize(item.Path)
		item.NewSize = item.OldSize

		r.line(display.IndentOne + display.InfoMsg("downloading %s...", name))
		n, err := r.download(ctx, update.BinaryTimeout, r.cfg.GeoFiles[name], item.Path)
		if err != nil {
			item.Err = err
			r.line(display.IndentOne + display.ErrorMsg("%s: %v", name, err))
		} else {
			item.NewSize = n
			r.line(display.IndentOne + display.SuccessMsg("%s (%s)", name, display.SizeChange(item.OldSize, item.NewSize)))
		}
		sum.add(item)
	}

	r.tally(sum)

	return sum
}

// UpdateConfigs downloads every config entry that has a URL into the config
// output directory, which is created if needed.
func (r *Runner) UpdateConfigs(ctx context.Context) *Summary {
	sum := &Summary{Kind: KindConfig}

	dir := r.cfg.ConfDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		sum.Err = fmt.Errorf("create config dir: %w", err)
		r.line(display.ErrorMsg("cannot create %s: %v", dir, err))

		return sum
	}

	entries := r.cfg.ActiveConfigs()
	if len(entries) == 0 {
		sum.Warning = "no config URLs configured"
		r.line(display.WarningMsg("%s", sum.Warning))

		return sum
	}

	r.line("")
	r.line(display.InfoMsg("updating configs → %s", dir))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			sum.Err = err
			log.WarnContext(ctx, "update interrupted", "kind", string(sum.Kind), log.Err(err))

			break
		}

		name := config.EntryFileName(e.Name)
		if !plainFileName(name) {
			item := ItemResult{Kind: KindConfig, Name: name, Err: fmt.Errorf("%w: %q", ErrUnsafeName, name)}
			r.line(display.IndentOne + display.ErrorMsg("%s: not a plain file name", name))
			sum.add(item)

			continue
		}
		item := ItemResult{Kind: KindConfig, Name: name, Path: filepath.Join(dir, name)}
		item.OldSize = update.FileSize(item.Path)
		item.NewSize = item.OldSize

		r.line(display.IndentOne + display.InfoMsg("downloading %s...", name))
		n, err := r.download(ctx, update.ConfigTimeout, e.URL, item.Path)
		if err != nil {
			item.Err = err
			r.line(display.IndentOne + display.ErrorMsg("%s: %v", name, err))
		} else {
			item.NewSize = n
			r.line(display.IndentOne + display.SuccessMsg("%s", name))
		}
		sum.add(item)
	}

	r.tally(sum)

	return sum
}

// plainFileName reports whether name stays inside the directory it is joined to.
func plainFileName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// UpdateAll runs the core, geo file and config updates in that order.
func (r *Runner) UpdateAll(ctx context.Context) []*Summary {
	return []*Summary{
		r.UpdateCores(ctx, ""),
		r.UpdateGeoFiles(ctx),
		r.UpdateConfigs(ctx),
	}
}

func (r *Runner) download(ctx context.Context, timeout time.Duration, url, dest string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return r.downloader.DownloadToFile(ctx, url, dest)
}

func (r *Runner) tally(sum *Summary) {
	if len(sum.Items) == 0 {
		return
	}
	msg := sum.String()
	if sum.Failed() > 0 {
		r.line(display.IndentOne + display.Warning(msg))

		return
	}
	r.line(display.IndentOne + display.Muted(msg))
}
