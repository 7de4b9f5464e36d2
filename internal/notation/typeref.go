package notation

import (
	"bytes"
	"encoding/json"

	"gitlab.com/tozd/go/errors"
)

// LanguageType is one language-tagged type spelling.
type LanguageType struct {
	Language string
	Name     string
}

// TypeReference is either a universal type name or an ordered set of
// language-tagged spellings. It encodes to JSON as a string in the first case
// and as an object in the second.
type TypeReference struct {
	Name       string
	ByLanguage []LanguageType
}

// Universal returns a reference that applies to every language.
func Universal(name string) TypeReference {
	return TypeReference{Name: name}
}

// Tagged reports whether the reference carries language tags.
func (r TypeReference) Tagged() bool {
	return len(r.ByLanguage) > 0
}

// Set commits name for language, replacing an earlier spelling for the same
// language in place.
func (r *TypeReference) Set(language, name string) {
	for i := range r.ByLanguage {
		if r.ByLanguage[i].Language == language {
			r.ByLanguage[i].Name = name
			return
		}
	}
	r.ByLanguage = append(r.ByLanguage, LanguageType{Language: language, Name: name})
}

// For returns the spelling used by language. An untagged reference applies to
// every language.
func (r TypeReference) For(language string) (string, bool) {
	if !r.Tagged() {
		return r.Name, r.Name != ""
	}
	for _, lt := range r.ByLanguage {
		if lt.Language == language {
			return lt.Name, true
		}
	}
	return "", false
}

func (r TypeReference) MarshalJSON() ([]byte, error) {
	if !r.Tagged() {
		return marshal(r.Name)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, lt := range r.ByLanguage {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(lt.Language)
		if err != nil {
			return nil, err
		}
		v, err := marshal(lt.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *TypeReference) UnmarshalJSON(data []byte) error {
	*r = TypeReference{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.Name)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return errors.Errorf("type reference: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Errorf("type reference: %w", err)
		}
		language, ok := tok.(string)
		if !ok {
			return errors.Errorf("type reference: unexpected key %v", tok)
		}
		var name string
		if err := dec.Decode(&name); err != nil {
			return errors.Errorf("type reference %q: %w", language, err)
		}
		r.ByLanguage = append(r.ByLanguage, LanguageType{Language: language, Name: name})
	}
	_, err := dec.Token()
	return err
}
