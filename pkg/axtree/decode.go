package axtree

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
)

// Parse decodes a tree snapshot from raw JSON.
//
// Two shapes are accepted: the protocol response object
//
//	{"nodes": [{"nodeId": "1", "role": {...}, "childIds": ["2"]}, ...]}
//
// and a bare array of nodes, which is what most DevTools dumps copy to the
// clipboard. Unknown node fields are ignored. A snapshot without nodes is an
// [apperrors.ErrCodeInvalidTree] error because it has no root.
func Parse(data []byte) (*Tree, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree, "empty input")
	}

	var t Tree
	if data[0] == '[' {
		if err := json.Unmarshal(data, &t.Nodes); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "decode node list")
		}
	} else if err := json.Unmarshal(data, &t); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidTree, err, "decode tree")
	}

	if len(t.Nodes) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidTree, "tree has no nodes")
	}
	return &t, nil
}

// ReadJSON reads all of r and decodes it with [Parse]. It returns the raw
// bytes alongside the tree so callers can hash or persist the exact input.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Tree, []byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read input")
	}
	t, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return t, data, nil
}

// ImportJSON reads the tree stored at path. The path "-" reads standard input.
func ImportJSON(path string) (*Tree, []byte, error) {
	if path == "-" {
		return ReadJSON(os.Stdin)
	}
	if err := apperrors.ValidatePath(path); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
