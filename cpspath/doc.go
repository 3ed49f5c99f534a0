// Package cpspath implements the path expression language used to address
// nodes inside screening bundles.
//
// A path is a sequence of dot-separated segments. Each segment is a
// property name with an optional bracket filter:
//
//	entry[0].resource.code.coding[*].code
//	extension[url:B].valueString
//	component[QuestionCode:SQ-L2H9-00000001].valueString
//
// Filters select elements of the array the segment resolves to: a decimal
// integer selects by position, "*" selects all elements, and "key:value"
// selects elements whose resolved sub-path key equals value. The filter
// key may itself be a nested path, resolved relative to each candidate
// element. QuestionCode is a recognized alias for code.coding[0].code.
//
// Resolution never fails: a missing property, an out-of-range index or a
// malformed path yields an empty result set. Dots inside brackets do not
// split segments, and unparseable trailing content degrades to a literal
// segment name. All resolution is read-only.
package cpspath
