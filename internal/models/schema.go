package models

// SchemaProperty describes one property of a stored class
type SchemaProperty struct {
	Name        string   `json:"name"`
	DataType    []string `json:"dataType"`
	Description string   `json:"description,omitempty"`
}

// SchemaClass describes a class in the vector database with its live object count
type SchemaClass struct {
	Class       string           `json:"class"`
	Description string           `json:"description,omitempty"`
	Vectorizer  string           `json:"vectorizer,omitempty"`
	Properties  []SchemaProperty `json:"properties"`
	ObjectCount int              `json:"objectCount"`
}

// Schema lists the stored class definitions
type Schema struct {
	Classes []SchemaClass `json:"classes"`
}

// HasClass reports whether the schema defines the named class
func (s *Schema) HasClass(name string) bool {
	for _, c := range s.Classes {
		if c.Class == name {
			return true
		}
	}
	return false
}
