package migration

import (
	"fmt"
	"strings"
)

// DMLOperation represents the operation a migration job executes against
// the target org for one object.
type DMLOperation string

const (
	OperationInsert          DMLOperation = "Insert"
	OperationUpdate          DMLOperation = "Update"
	OperationUpsert          DMLOperation = "Upsert"
	OperationDelete          DMLOperation = "Delete"
	OperationDeleteHierarchy DMLOperation = "DeleteHierarchy"
	OperationDeleteSource    DMLOperation = "DeleteSource"
	OperationReadonly        DMLOperation = "Readonly"
)

// ParseDMLOperation normalizes a manifest operation string into a DMLOperation.
// Unknown values are returned as-is so callers can name them when skipping.
func ParseDMLOperation(s string) DMLOperation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "insert":
		return OperationInsert
	case "update":
		return OperationUpdate
	case "upsert":
		return OperationUpsert
	case "delete":
		return OperationDelete
	case "deletehierarchy", "delete_hierarchy":
		return OperationDeleteHierarchy
	case "deletesource", "delete_source":
		return OperationDeleteSource
	case "readonly":
		return OperationReadonly
	default:
		return DMLOperation(s)
	}
}

// IsKnown reports whether the operation is part of the closed set.
func (op DMLOperation) IsKnown() bool {
	switch op {
	case OperationInsert, OperationUpdate, OperationUpsert,
		OperationDelete, OperationDeleteHierarchy, OperationDeleteSource,
		OperationReadonly:
		return true
	default:
		return false
	}
}

// IsDestructive returns true for operations that remove rows from the target.
func (op DMLOperation) IsDestructive() bool {
	switch op {
	case OperationDelete, OperationDeleteHierarchy, OperationDeleteSource:
		return true
	default:
		return false
	}
}

// ObjectConfig is one object entry in a migration job configuration
// consumed by the external migration engine.
type ObjectConfig struct {
	ObjectName string       `json:"objectName"`
	Operation  DMLOperation `json:"operation"`
	ExternalID string       `json:"externalId,omitempty"`
	Query      string       `json:"query,omitempty"`
	BackupFile string       `json:"backupFile,omitempty"`
}

// Validate validates an ObjectConfig before it is handed to the engine.
func (oc *ObjectConfig) Validate() error {
	if oc.ObjectName == "" {
		return fmt.Errorf("object name cannot be empty")
	}
	if oc.Operation == "" {
		return fmt.Errorf("operation cannot be empty for object %s", oc.ObjectName)
	}
	if !oc.Operation.IsKnown() {
		return fmt.Errorf("unknown operation %q for object %s", oc.Operation, oc.ObjectName)
	}
	return nil
}

// ExternalIDFields splits a possibly composite external id declaration
// ("A;B") into its component field names. Empty components are dropped.
func ExternalIDFields(externalID string) []string {
	parts := strings.Split(externalID, ";")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if f := strings.TrimSpace(p); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// IsIdentifierField reports whether a field name is the system record
// identifier rather than a user-declared external id.
func IsIdentifierField(field string) bool {
	return strings.EqualFold(field, "Id")
}
