package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"

	"github.com/matzehuels/spyglass/pkg/errors"
)

// stdinName is the argument that reads an input from standard input.
const stdinName = "-"

// input is one value to dump.
type input struct {
	name  string
	value any
}

// loadInputs reads every argument as a JSON or TOML document.
func loadInputs(args []string) ([]input, error) {
	inputs := make([]input, 0, len(args))
	for _, arg := range args {
		in, err := loadInput(arg)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

func loadInput(arg string) (input, error) {
	if arg == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		format := "toml"
		if gjson.ValidBytes(data) {
			format = "json"
		}
		v, err := decode(format, data)
		return input{name: "stdin", value: v}, err
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		if os.IsNotExist(err) {
			return input{}, errors.Wrap(errors.ErrCodeNotFound, err, "input %s", arg)
		}
		return input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", arg)
	}
	ext := strings.ToLower(filepath.Ext(arg))
	v, err := decode(strings.TrimPrefix(ext, "."), data)
	if err != nil {
		return input{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", arg)
	}
	return input{name: inputName(arg), value: v}, nil
}

// decode turns a JSON or TOML document into plain maps, slices and scalars.
func decode(format string, data []byte) (any, error) {
	switch format {
	case "json":
		if !gjson.ValidBytes(data) {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid JSON")
		}
		return gjson.ParseBytes(data).Value(), nil
	case "toml":
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid TOML")
		}
		return m, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported input format %q (want .json or .toml)", format)
}

// inputName derives the dump name from a file name: "conf/app.prod.json"
// becomes "app_prod", so that generated code starts from an identifier.
func inputName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, base)
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "v" + name
	}
	return name
}
