package metadata

// HeaderInfo is the persisted snapshot of the source file's header facts,
// written once at the end of a split run (header_info.json). A later group
// run in a fresh process loads it instead of re-parsing the source.
type HeaderInfo struct {
	OriginalHeader string      `json:"originalHeader"`
	VertexCount    int         `json:"vertexCount"`
	PropertyTypes  [][2]string `json:"propertyTypes"`
	MaxSHDegree    int         `json:"maxShDegree"`
}

// ChunkRef identifies one constituent chunk of a group.
type ChunkRef struct {
	Index    int    `json:"index"`
	Filename string `json:"filename"`
}

// GroupRecord describes one attempted group.
type GroupRecord struct {
	GroupID     int        `json:"groupId"`
	Path        string     `json:"path"`
	VertexCount int        `json:"vertexCount"`
	Chunks      []ChunkRef `json:"chunks"`
}

// GroupFailure records a group whose merge or verification failed.
type GroupFailure struct {
	GroupID int    `json:"groupId"`
	Error   string `json:"error"`
}

// GroupManifest is the audit trail of a group run (chunks_metadata.json).
// "Node" means chunk here: OriginalNodeCount is the number of chunk files
// consumed and NodesPerGroup the effective chunks-per-group.
type GroupManifest struct {
	OriginalNodeCount int            `json:"originalNodeCount"`
	TotalGroups       int            `json:"totalGroups"`
	GroupSize         int            `json:"groupSize"`
	NodesPerGroup     int            `json:"nodesPerGroup"`
	SuccessfulGroups  int            `json:"successfulGroups"`
	FailedGroups      []GroupFailure `json:"failedGroups"`
	Groups            []GroupRecord  `json:"groups"`
}
