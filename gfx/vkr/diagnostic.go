// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vkr

import (
	"sync"
	"unsafe"

	vk "github.com/devblok/vulkan"
	log "github.com/sirupsen/logrus"
)

// DiagnosticPrefix marks messages coming from the validation layers.
const DiagnosticPrefix = "[VK_EXT_debug_report] "

// Severity of a driver diagnostic.
type Severity int

// Severities, lowest first
const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// DiagnosticSink receives free text validation messages from the driver.
// Report may be called from any thread the driver chooses.
type DiagnosticSink interface {
	// Enabled tells whether the validation layers should be loaded
	Enabled() bool

	Report(severity Severity, layer, message string)

	// Last returns the most recent warning or error, empty if none
	Last() string
}

// NewDiagnosticSink returns a sink forwarding to logger when enabled,
// or one discarding everything.
func NewDiagnosticSink(enabled bool, logger log.FieldLogger) DiagnosticSink {
	if !enabled {
		return nopSink{}
	}
	return &logSink{log: logger}
}

type nopSink struct{}

func (nopSink) Enabled() bool                  { return false }
func (nopSink) Report(Severity, string, string) {}
func (nopSink) Last() string                   { return "" }

type logSink struct {
	log log.FieldLogger

	mutex sync.Mutex
	last  string
}

func (s *logSink) Enabled() bool {
	return true
}

func (s *logSink) Report(severity Severity, layer, message string) {
	entry := s.log.WithField("layer", layer)
	text := DiagnosticPrefix + message
	switch severity {
	case SeverityError:
		entry.Error(text)
	case SeverityWarning:
		entry.Warn(text)
	case SeverityInfo:
		entry.Info(text)
	default:
		entry.Debug(text)
	}

	if severity >= SeverityWarning {
		s.mutex.Lock()
		s.last = message
		s.mutex.Unlock()
	}
}

func (s *logSink) Last() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.last
}

func severityOf(flags vk.DebugReportFlags) Severity {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		return SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		return SeverityWarning
	case flags&vk.DebugReportFlags(vk.DebugReportInformationBit) != 0:
		return SeverityInfo
	default:
		return SeverityDebug
	}
}

// debugReportCallback forwards debug reports into sink.
func debugReportCallback(sink DiagnosticSink) vk.DebugReportCallbackFunc {
	return func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
		object uint, location uint, messageCode int32, pLayerPrefix string,
		pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

		sink.Report(severityOf(flags), pLayerPrefix, pMessage)
		return vk.Bool32(vk.False)
	}
}
