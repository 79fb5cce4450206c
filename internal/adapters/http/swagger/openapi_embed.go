package swagger

import _ "embed"

// openAPIContract holds the embedded OpenAPI YAML document served at
// /openapi.yaml.
//
//go:embed openapi.yaml
var openAPIContract []byte
