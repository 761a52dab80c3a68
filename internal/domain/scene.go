package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Scene 是一个叙事单元：Name 由文件名前缀推导，Parts 为按自然排序的分段文件。
type Scene struct {
	Name  string
	Parts []string
}

// Scenes 是有序的 scene 映射（保持插入顺序）。
//
// 约束：Name 在集合内唯一；查找走线性扫描。
type Scenes []Scene

func (s Scenes) Len() int { return len(s) }

// Get 返回 name 对应的分段列表。
func (s Scenes) Get(name string) ([]string, bool) {
	for i := range s {
		if s[i].Name == name {
			return s[i].Parts, true
		}
	}
	return nil, false
}

func (s Scenes) Names() []string {
	out := make([]string, 0, len(s))
	for i := range s {
		out = append(out, s[i].Name)
	}
	return out
}

// MarshalJSON 输出有序 JSON 对象：{"<scene>": ["part", ...]}。
// encoding/json 对 map 的 key 会重新排序，这里手写对象以保留 scene 顺序。
func (s Scenes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(s[i].Name)
		if err != nil {
			return nil, err
		}
		parts := s[i].Parts
		if parts == nil {
			parts = []string{}
		}
		v, err := json.Marshal(parts)
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

// UnmarshalJSON 按对象中 key 的出现顺序还原 Scenes。
func (s *Scenes) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("scenes 必须是 JSON 对象，实际是 %v", tok)
	}
	out := Scenes{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var parts []string
		if err := dec.Decode(&parts); err != nil {
			return err
		}
		out = append(out, Scene{Name: name, Parts: parts})
	}
	*s = out
	return nil
}
