package config

import (
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// MarshalJSON renders c in the FileName format, indented, with every key present.
func (c Config) MarshalJSON() ([]byte, error) {
	out := []byte("{}")
	var err error
	for _, kv := range []struct {
		key string
		val any
	}{
		{KeyColor, c.Color},
		{KeyDiffContext, c.DiffContext},
		{KeyDiffWidth, c.DiffWidth},
		{KeyParallel, c.Parallel},
		{KeyLogFile, c.LogFile},
	} {
		if out, err = sjson.SetBytes(out, kv.key, kv.val); err != nil {
			return nil, err
		}
	}
	return pretty.Pretty(out), nil
}
