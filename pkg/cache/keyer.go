package cache

// keyVersion changes whenever the cached encoding of graphs or layouts does.
const keyVersion = "v1"

// GraphKeyOpts holds the load settings that change an extracted graph.
type GraphKeyOpts struct {
	Encoding string `json:"encoding"`
}

// LayoutKeyOpts holds the layout settings that change a layout result.
type LayoutKeyOpts struct {
	Direction  string  `json:"direction"`
	NodeWidth  float64 `json:"node_width"`
	NodeHeight float64 `json:"node_height"`
	RankGap    float64 `json:"rank_gap"`
	NodeGap    float64 `json:"node_gap"`
	Passes     int     `json:"passes"`
}

// ExportKeyOpts holds the settings of a rendered export.
type ExportKeyOpts struct {
	Format    string `json:"format"`
	Direction string `json:"direction"`
	Detailed  bool   `json:"detailed"`
}

// Keyer builds cache keys. Equal inputs must give equal keys.
type Keyer interface {
	// GraphKey keys an extracted graph by the hash of its source bytes.
	GraphKey(sourceHash string, opts GraphKeyOpts) string
	// LayoutKey keys a layout by the hash of its graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	// ExportKey keys a rendered export by the hash of its graph.
	ExportKey(graphHash string, opts ExportKeyOpts) string
}

// DefaultKeyer hashes every input into a fixed-length key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey returns "graph:<sha256>".
func (DefaultKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return hashKey("graph", keyVersion, sourceHash, opts)
}

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", keyVersion, graphHash, opts)
}

// ExportKey returns "export:<sha256>".
func (DefaultKeyer) ExportKey(graphHash string, opts ExportKeyOpts) string {
	return hashKey("export", keyVersion, graphHash, opts)
}

var _ Keyer = DefaultKeyer{}
