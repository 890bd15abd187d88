// Package rules holds the migration rule set: which classes are eligible, and
// how their imports, declarations and properties are rewritten.
package rules

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"

	"github.com/maliboot/colaup/internal/traverse"
)

// Attribute names that mark a class as a data-modeling role.
var roleMarkers = map[string]bool{
	"DataObject":         true,
	"DataTransferObject": true,
	"ViewObject":         true,
	"AggregateRoot":      true,
	"ValueObject":        true,
	"Entity":             true,
}

const (
	weakSetterInterface = `MaliBoot\Lombok\Contract\WeakSetterInterface`
	ofAnnotation        = `MaliBoot\Lombok\Annotation\Of`
	ormAnnotation       = `MaliBoot\Cola\Annotation\ORM`

	weakSetterName    = "WeakSetterInterface"
	softDeletesTrait  = "SoftDeletes"
	abstractPageQuery = "AbstractPageQuery"
	pageQueryType     = "query-page"

	columnAttribute = "Column"
	fieldAttribute  = "Field"
	ormAttribute    = "ORM"
	ofAttribute     = "Of"
)

// Imports deleted from the namespace of an eligible class.
var importRemovals = map[string]bool{
	`MaliBoot\Cola\Infra\AbstractDatabaseDO`: true,
}

// Imports renamed in the namespace of an eligible class.
var importRenames = map[string]string{
	`MaliBoot\Cola\Annotation\DataObject`: `MaliBoot\Cola\Annotation\Database`,
}

type requiredImport struct {
	name    string
	applies func(c *traverse.ClassInfo) bool
}

func always(*traverse.ClassInfo) bool { return true }

// Imports added ahead of the existing statements, in this order.
var requiredImports = []requiredImport{
	{name: weakSetterInterface, applies: always},
	{name: ofAnnotation, applies: always},
	{name: ormAnnotation, applies: func(c *traverse.ClassInfo) bool {
		return strings.Contains(c.Name, "DO")
	}},
}

// Traits removed from eligible classes.
var prunedTraits = map[string]bool{
	softDeletesTrait: true,
}

// classAnnotation rewrites the first attribute of a class attribute group.
type classAnnotation func(attr *ast.Attribute, c *traverse.ClassInfo)

var classAnnotations = map[string]classAnnotation{
	"DataObject":         toDatabase,
	"DataTransferObject": toPageQuery,
}

// Arguments of a DataObject attribute carried over to Database.
var databaseArgs = map[string]bool{
	"table":      true,
	"connection": true,
}

// Property attributes whose argument becomes the property doc comment.
var docArguments = map[string]string{
	columnAttribute: "desc",
	fieldAttribute:  "name",
}

// Property attributes already in migrated form.
var migratedAttributes = map[string]bool{
	ormAttribute: true,
	ofAttribute:  true,
}

// Eligible reports whether c carries a role marker.
func Eligible(c *traverse.ClassInfo) bool {
	if c == nil {
		return false
	}
	for _, name := range c.AttrNames {
		if roleMarkers[name] {
			return true
		}
	}
	return false
}
