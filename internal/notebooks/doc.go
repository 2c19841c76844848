// Package notebooks converts the Jupyter notebooks under docs/notebooks into
// Mintlify pages with quarto, then adds an icon and Kaggle, Colab and GitHub
// links to each page's frontmatter.
package notebooks
