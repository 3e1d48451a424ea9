package naming

import (
	"net/url"
	"path/filepath"

	"docu-assets/pkg/config"
	"docu-assets/pkg/models"
	"docu-assets/pkg/utils"
)

// Planner combines a strategy-produced filename with the output-root and
// prefix configuration into the concrete write path and the path spliced
// into the rewritten markdown reference.
type Planner struct {
	opts *config.Options
}

// NewPlanner returns a Planner bound to validated options.
func NewPlanner(opts *config.Options) (*Planner, error) {
	if opts == nil || !opts.Initialized() {
		return nil, utils.WrapErrorf(utils.ErrConfiguration, "planner created before options were validated")
	}
	return &Planner{opts: opts}, nil
}

// Plan populates the descriptor's OutputFileName, PrimaryOutputPath and
// MarkdownReferencePath. The write path uses the decoded filename; the
// markdown reference keeps the encoded form so the emitted link stays a
// valid URL.
func (p *Planner) Plan(d *models.ImageDescriptor, fileName string) {
	root := p.opts.ImageOutputPath
	if root == "" {
		root = d.Page.Dir
	}
	d.OutputFileName = fileName
	d.PrimaryOutputPath = filepath.Join(root, decodePathComponent(fileName))
	d.MarkdownReferencePath = p.opts.ImagePrefix + "/" + fileName
}

// LocalizedPath returns the write path for a locale's variant of the
// descriptor's asset: the locale-specific documentation tree mirroring the
// page's folder. filepath.Join collapses any duplicate separators.
func (p *Planner) LocalizedPath(d *models.ImageDescriptor, locale string) string {
	return filepath.Join(
		p.opts.SiteRoot,
		"i18n",
		locale,
		p.opts.LocalizedDocsRoot,
		"current",
		d.Page.RelativeFolderPath,
		decodePathComponent(d.OutputFileName),
	)
}

// decodePathComponent percent-decodes a filename for filesystem use, leaving
// it untouched when it is not valid percent-encoding.
func decodePathComponent(name string) string {
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return decoded
}
