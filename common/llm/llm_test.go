package llm_test

import (
	"encoding/json"

	"frontier.app/frontier/common/llm"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type findings struct {
	Title       string   `json:"title"`
	Limitations []string `json:"limitations"`
}

var _ = Describe("ParseToolArguments", func() {
	It("unmarshals tool arguments into the target struct", func() {
		args := `{"title": "Survey of X", "limitations": ["small dataset", "no ablation"]}`

		parsed, err := llm.ParseToolArguments[findings](args)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Title).To(Equal("Survey of X"))
		Expect(parsed.Limitations).To(HaveLen(2))
	})

	It("returns an error for malformed JSON", func() {
		_, err := llm.ParseToolArguments[findings](`{"title":`)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("GenerateSchemaFrom", func() {
	It("produces a closed object schema", func() {
		schema := llm.GenerateSchemaFrom(&findings{})

		data, err := json.Marshal(schema)
		Expect(err).NotTo(HaveOccurred())

		var m map[string]any
		Expect(json.Unmarshal(data, &m)).To(Succeed())
		Expect(m["type"]).To(Equal("object"))
		Expect(m["additionalProperties"]).To(Equal(false))

		props, ok := m["properties"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(props).To(HaveKey("title"))
		Expect(props).To(HaveKey("limitations"))
	})

	It("is deterministic for identical input types", func() {
		a, err := json.Marshal(llm.GenerateSchemaFrom(&findings{}))
		Expect(err).NotTo(HaveOccurred())
		b, err := json.Marshal(llm.GenerateSchemaFrom(&findings{}))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(a)).To(Equal(string(b)))
	})
})
