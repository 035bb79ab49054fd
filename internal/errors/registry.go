package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Fatal      bool
}

// Error codes.
const (
	CodePathNotFound     = "E100"
	CodeTagMismatch      = "E101"
	CodeMoveSourceGone   = "E102"
	CodeNotApplicable    = "E103"
	CodeNoParent         = "E104"
	CodeMalformedPayload = "E200"
	CodeUnsupportedFrame = "E201"
	CodeUnreadableInput  = "E300"
	CodeUnsupportedInput = "E301"
	CodeConfigInvalid    = "E400"
	CodeConfigValidation = "E401"
	CodeSnapshotNotFound = "E500"
	CodeSnapshotBackend  = "E501"
)

const rebuildHint = "Discard the live tree and mount the new tree from scratch."

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Patch application (E100-E199)
	// ============================================

	CodePathNotFound: {
		Category:   CategoryApply,
		Message:    "Patch path not found in live tree",
		Detail:     "The live tree has drifted from the tree the patches were computed against.",
		Suggestion: rebuildHint,
		Fatal:      true,
	},
	CodeTagMismatch: {
		Category:   CategoryApply,
		Message:    "Tag assertion failed",
		Detail:     "The node at the patch path does not have the expected tag.",
		Suggestion: rebuildHint,
		Fatal:      true,
	},
	CodeMoveSourceGone: {
		Category:   CategoryApply,
		Message:    "Move source not found in live tree",
		Suggestion: rebuildHint,
		Fatal:      true,
	},
	CodeNotApplicable: {
		Category:   CategoryApply,
		Message:    "Patch not applicable to target",
		Detail:     "The patch operation cannot be applied to a node of this kind.",
		Suggestion: rebuildHint,
		Fatal:      true,
	},
	CodeNoParent: {
		Category:   CategoryApply,
		Message:    "Target has no parent",
		Detail:     "Sibling insertion and moves need a target with a parent.",
		Suggestion: rebuildHint,
		Fatal:      true,
	},

	// ============================================
	// Wire protocol (E200-E299)
	// ============================================

	CodeMalformedPayload: {
		Category: CategoryProtocol,
		Message:  "Malformed wire payload",
	},
	CodeUnsupportedFrame: {
		Category: CategoryProtocol,
		Message:  "Unsupported frame type",
	},

	// ============================================
	// Input documents (E300-E399)
	// ============================================

	CodeUnreadableInput: {
		Category:   CategoryInput,
		Message:    "Cannot read tree document",
		Suggestion: "Check that the file exists and is valid JSON, YAML or HTML.",
	},
	CodeUnsupportedInput: {
		Category:   CategoryInput,
		Message:    "Unsupported document format",
		Suggestion: "Use a .json, .yaml, .yml, .html or .htm file.",
	},

	// ============================================
	// Configuration (E400-E499)
	// ============================================

	CodeConfigInvalid: {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check vdiff.json or vdiff.yaml for syntax errors.",
	},
	CodeConfigValidation: {
		Category: CategoryConfig,
		Message:  "Configuration validation failed",
	},

	// ============================================
	// Snapshot storage (E500-E599)
	// ============================================

	CodeSnapshotNotFound: {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
	},
	CodeSnapshotBackend: {
		Category: CategoryStorage,
		Message:  "Snapshot backend failure",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
