package api

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"
)

//go:embed openapi.yaml
var openAPISource []byte

// OpenAPIHandler serves the API description as JSON. The document is
// authored as YAML next to this file and rendered once, with the
// deployment's base URL injected as its server entry.
func OpenAPIHandler(baseURL string) http.HandlerFunc {
	var (
		once sync.Once
		doc  []byte
		err  error
	)
	return func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			doc, err = renderOpenAPI(openAPISource, baseURL)
		})
		if err != nil {
			http.Error(w, "openapi unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	}
}

// renderOpenAPI converts the YAML source to JSON and, when a base URL
// is configured, overrides the servers list with it.
func renderOpenAPI(source []byte, baseURL string) ([]byte, error) {
	raw, err := yaml.YAMLToJSON(source)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		return raw, nil
	}

	var document map[string]json.RawMessage
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, err
	}
	servers, err := json.Marshal([]map[string]string{{"url": baseURL}})
	if err != nil {
		return nil, err
	}
	document["servers"] = servers
	return json.Marshal(document)
}
