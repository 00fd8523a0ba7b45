package msg

const (
	ExecSuccess     = "Local event recorded"
	SendSuccess     = "Message sent"
	HistorySuccess  = "History retrieved successfully"
	GCSuccess       = "Garbage collection complete"
	SnapshotStarted = "Snapshot initiated"
	RecordsSuccess  = "Snapshot records retrieved successfully"

	FailedToParse  = "Failed to parse request body"
	PeerMissing    = "Peer is missing"
	BadPeer        = "Peer is not in the cluster"
	NotCollector   = "Process does not collect garbage"
	NotSnapshotter = "Process does not take snapshots"
	Unavailable    = "Unable to satisfy request"
)
