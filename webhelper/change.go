package webhelper

// ChangeSet flags which fields of a Status differ from the previous poll.
type ChangeSet struct {
	Volume          bool `json:"volume"`
	Online          bool `json:"online"`
	Version         bool `json:"version"`
	Running         bool `json:"running"`
	Playing         bool `json:"playing"`
	Shuffle         bool `json:"shuffle"`
	ServerTime      bool `json:"server_time"`
	PlayEnabled     bool `json:"play_enabled"`
	PrevEnabled     bool `json:"prev_enabled"`
	NextEnabled     bool `json:"next_enabled"`
	ClientVersion   bool `json:"client_version"`
	PlayingPosition bool `json:"playing_position"`
	OpenGraphState  bool `json:"open_graph_state"`
	Track           bool `json:"track"`
}

// AllChanged is the ChangeSet handed out for the first snapshot, when there is
// nothing to compare against.
func AllChanged() ChangeSet {
	return ChangeSet{
		Volume:          true,
		Online:          true,
		Version:         true,
		Running:         true,
		Playing:         true,
		Shuffle:         true,
		ServerTime:      true,
		PlayEnabled:     true,
		PrevEnabled:     true,
		NextEnabled:     true,
		ClientVersion:   true,
		PlayingPosition: true,
		OpenGraphState:  true,
		Track:           true,
	}
}

// Diff compares two snapshots field by field. Tracks are compared by value.
func Diff(current, previous Status) ChangeSet {
	return ChangeSet{
		Volume:          current.Volume != previous.Volume,
		Online:          current.Online != previous.Online,
		Version:         current.Version != previous.Version,
		Running:         current.Running != previous.Running,
		Playing:         current.Playing != previous.Playing,
		Shuffle:         current.Shuffle != previous.Shuffle,
		ServerTime:      current.ServerTime != previous.ServerTime,
		PlayEnabled:     current.PlayEnabled != previous.PlayEnabled,
		PrevEnabled:     current.PrevEnabled != previous.PrevEnabled,
		NextEnabled:     current.NextEnabled != previous.NextEnabled,
		ClientVersion:   current.ClientVersion != previous.ClientVersion,
		PlayingPosition: current.PlayingPosition != previous.PlayingPosition,
		OpenGraphState:  current.OpenGraphState != previous.OpenGraphState,
		Track:           !sameTrack(current.Track, previous.Track),
	}
}

func sameTrack(a, b *Track) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Any reports whether at least one field changed.
func (c ChangeSet) Any() bool {
	return c != ChangeSet{}
}
