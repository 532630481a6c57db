package trees

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"
)

// SnapshotVersion is the version of the JSON snapshot layout written by
// EncodeSnapshot.
const SnapshotVersion = 1

type snapshotRecord struct {
	Version int        `json:"version"`
	Root    *dirRecord `json:"root"`
}

type dirRecord struct {
	Path  string       `json:"path"`
	Files []fileRecord `json:"files"`
	Dirs  []*dirRecord `json:"dirs"`
}

type fileRecord struct {
	Path     string          `json:"path"`
	Contents []byte          `json:"contents"`
	Metadata *metadataRecord `json:"metadata,omitempty"`
}

type metadataRecord struct {
	ModifiedUnix  *int64 `json:"modified_unix,omitempty"`
	ModifiedNanos int64  `json:"modified_nanos,omitempty"`
}

// EncodeSnapshot serializes the tree rooted at root. File contents are
// stored base64-encoded and timestamps as integer seconds and nanoseconds, so decoding
// reproduces the tree exactly, ordering included.
func EncodeSnapshot(root *Dir) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", common.ErrInvalidTree)
	}
	return json.Marshal(snapshotRecord{
		Version: SnapshotVersion,
		Root:    toDirRecord(root),
	})
}

// DecodeSnapshot reconstructs a tree written by EncodeSnapshot and checks
// its invariants.
func DecodeSnapshot(data []byte) (*Dir, error) {
	var record snapshotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %w", common.ErrInvalidTree, err)
	}
	if record.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", common.ErrInvalidTree, record.Version)
	}
	if record.Root == nil {
		return nil, fmt.Errorf("%w: snapshot has no root", common.ErrInvalidTree)
	}

	root := fromDirRecord(record.Root)
	if err := Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

// MustDecodeSnapshot is DecodeSnapshot for snapshots produced by the
// generator and embedded into the binary. It panics on malformed input.
func MustDecodeSnapshot(data []byte) *Dir {
	root, err := DecodeSnapshot(data)
	if err != nil {
		panic(err)
	}
	return root
}

// MarshalJSON encodes the directory as a snapshot rooted at d.
func (d *Dir) MarshalJSON() ([]byte, error) {
	return EncodeSnapshot(d)
}

func toDirRecord(d *Dir) *dirRecord {
	record := &dirRecord{
		Path:  d.path,
		Files: make([]fileRecord, 0, len(d.files)),
		Dirs:  make([]*dirRecord, 0, len(d.dirs)),
	}
	for _, f := range d.files {
		fr := fileRecord{
			Path:     f.path,
			Contents: []byte(f.contents),
		}
		if f.metadata != nil {
			fr.Metadata = &metadataRecord{}
			if modified, ok := f.metadata.ModifiedAt(); ok {
				seconds := modified.Unix()
				fr.Metadata.ModifiedUnix = &seconds
				fr.Metadata.ModifiedNanos = int64(modified.Nanosecond())
			}
		}
		record.Files = append(record.Files, fr)
	}
	for _, sub := range d.dirs {
		record.Dirs = append(record.Dirs, toDirRecord(sub))
	}
	return record
}

func fromDirRecord(record *dirRecord) *Dir {
	files := make([]*File, 0, len(record.Files))
	for _, fr := range record.Files {
		var metadata *Metadata
		if fr.Metadata != nil {
			metadata = EmptyMetadata()
			if fr.Metadata.ModifiedUnix != nil {
				metadata = NewMetadata(time.Unix(*fr.Metadata.ModifiedUnix, fr.Metadata.ModifiedNanos))
			}
		}
		files = append(files, NewFile(fr.Path, string(fr.Contents), metadata))
	}

	dirs := make([]*Dir, 0, len(record.Dirs))
	for _, sub := range record.Dirs {
		if sub == nil {
			dirs = append(dirs, nil)
			continue
		}
		dirs = append(dirs, fromDirRecord(sub))
	}
	return NewDir(record.Path, files, dirs)
}
