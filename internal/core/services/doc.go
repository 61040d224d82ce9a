// Package services implements the driving port interfaces: the
// question-answering pipeline, its builder and the settings service.
// Services orchestrate calls to driven ports (adapters).
package services
