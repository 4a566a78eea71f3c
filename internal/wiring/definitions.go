package wiring

// Names under which Wire registers definitions.
const (
	DefConfig                 = "serializer.config"
	DefDirectories            = "serializer.metadata.file_locator.directories"
	DefMetadataCache          = "serializer.metadata.cache"
	DefNamingStrategy         = "serializer.naming_strategy"
	DefDateTimeHandler        = "serializer.handler.datetime"
	DefArrayCollectionHandler = "serializer.handler.array_collection"
	DefJSONVisitor            = "serializer.visitor.json"
	DefXMLVisitor             = "serializer.visitor.xml"
	DefSerializationContext   = "serializer.serialization_context_factory"
	DefDeserializationContext = "serializer.deserialization_context_factory"
)

// MetadataCache configures the metadata factory and its cache. Dir is empty
// when caching is disabled.
type MetadataCache struct {
	Kind          string `json:"kind" yaml:"kind"`
	Dir           string `json:"dir,omitempty" yaml:"dir,omitempty"`
	Debug         bool   `json:"debug" yaml:"debug"`
	AutoDetection bool   `json:"auto_detection" yaml:"auto_detection"`
	InferTypes    bool   `json:"infer_types" yaml:"infer_types"`
}

// NamingStrategy selects how property names are translated. A non-empty ID
// names a host-provided strategy and the remaining fields are ignored.
type NamingStrategy struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Separator   string `json:"separator" yaml:"separator"`
	LowerCase   bool   `json:"lower_case" yaml:"lower_case"`
	EnableCache bool   `json:"enable_cache" yaml:"enable_cache"`
}

type DateTimeHandler struct {
	Format   string `json:"format" yaml:"format"`
	Timezone string `json:"timezone" yaml:"timezone"`
	CData    bool   `json:"cdata" yaml:"cdata"`
}

type ArrayCollectionHandler struct {
	InitializeExcluded bool `json:"initialize_excluded" yaml:"initialize_excluded"`
}

type JSONVisitor struct {
	Options int `json:"options" yaml:"options"`
	Depth   int `json:"depth" yaml:"depth"`
}

type XMLVisitor struct {
	DoctypeWhitelist []string `json:"doctype_whitelist" yaml:"doctype_whitelist"`
	FormatOutput     bool     `json:"format_output" yaml:"format_output"`
}

// ContextFactory holds the defaults applied to every new serialization or
// deserialization context. Nil pointers mean "leave the context's own
// default alone".
type ContextFactory struct {
	Version              *float64       `json:"version,omitempty" yaml:"version,omitempty"`
	SerializeNull        *bool          `json:"serialize_null,omitempty" yaml:"serialize_null,omitempty"`
	EnableMaxDepthChecks *bool          `json:"enable_max_depth_checks,omitempty" yaml:"enable_max_depth_checks,omitempty"`
	Attributes           map[string]any `json:"attributes" yaml:"attributes"`
	Groups               []string       `json:"groups" yaml:"groups"`
}
