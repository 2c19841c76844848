package notebooks

import (
	"gopkg.in/yaml.v3"
)

// QuartoConfigFile is written into the notebooks directory for the duration
// of a render and removed afterwards.
const QuartoConfigFile = "_quarto.yml"

type quartoConfig struct {
	Project quartoProject `yaml:"project"`
	Format  quartoFormat  `yaml:"format"`
}

type quartoProject struct {
	Type      string `yaml:"type"`
	OutputDir string `yaml:"output-dir"`
}

type quartoFormat struct {
	DocusaurusMD docusaurusMD `yaml:"docusaurus-md"`
}

type docusaurusMD struct {
	OutputExt             string   `yaml:"output-ext"`
	Echo                  bool     `yaml:"echo"`
	Output                bool     `yaml:"output"`
	Warning               bool     `yaml:"warning"`
	Error                 bool     `yaml:"error"`
	PreserveYAML          bool     `yaml:"preserve-yaml"`
	Standalone            bool     `yaml:"standalone"`
	TOC                   bool     `yaml:"toc"`
	Wrap                  string   `yaml:"wrap"`
	FigFormat             string   `yaml:"fig-format"`
	FigDPI                int      `yaml:"fig-dpi"`
	FigPath               string   `yaml:"fig-path"`
	ExtractMedia          string   `yaml:"extract-media"`
	ResourcePath          []string `yaml:"resource-path,flow"`
	DefaultImageExtension string   `yaml:"default-image-extension"`
	MarkdownHeadings      string   `yaml:"markdown-headings"`
}

// QuartoConfig renders the project file that sends docusaurus-md output with
// an .mdx extension to outputDir, which must be absolute.
func QuartoConfig(outputDir string) ([]byte, error) {
	return yaml.Marshal(quartoConfig{
		Project: quartoProject{Type: "default", OutputDir: outputDir},
		Format: quartoFormat{DocusaurusMD: docusaurusMD{
			OutputExt:             "mdx",
			Echo:                  true,
			Output:                true,
			PreserveYAML:          true,
			Wrap:                  "auto",
			FigFormat:             "png",
			FigDPI:                300,
			FigPath:               "images/",
			ExtractMedia:          "images/",
			ResourcePath:          []string{".", "images/", "../images/"},
			DefaultImageExtension: "png",
			MarkdownHeadings:      "atx",
		}},
	})
}
