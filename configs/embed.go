// Package configs provides the embedded configuration template for regestra.
//
// The template is embedded at build time with //go:embed so it ships in
// every distribution. `regestra init` writes it to ~/.regestra/config.yaml
// when no config exists; the commented examples document every setting.
//
// Configuration hierarchy (see internal/config Load()):
//  1. Hardcoded defaults
//  2. Config file (~/.regestra/config.yaml or --config)
//  3. Environment variables (REGESTRA_*)
package configs

import _ "embed"

// ConfigTemplate is the annotated default configuration written by
// `regestra init`.
//
//go:embed config.example.yaml
var ConfigTemplate string
