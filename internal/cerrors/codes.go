package cerrors

// Error code constants, grouped by phase, mirroring the taxonomy of
// spec.md §7. Kept as a flat const block (not an enum type) so callers
// can embed them directly in Report.Code without a conversion.
const (
	// Syntax (SYN###)
	SYN001UnexpectedToken  = "SYN001"
	SYN002MissingDelimiter = "SYN002"
	SYN003InvalidEscape    = "SYN003"

	// Reference (REF###)
	REF001UndefinedVariable  = "REF001"
	REF002UndefinedFunction  = "REF002"
	REF003UndefinedType      = "REF003"
	REF004UndefinedNamespace = "REF004"
	REF005AmbiguousFunction  = "REF005"

	// Type (TYP###)
	TYP001TypeMismatch          = "TYP001"
	TYP002IncompatibleMerge     = "TYP002"
	TYP003InvalidProjection     = "TYP003"
	TYP004InvalidFieldAccess    = "TYP004"
	TYP005ArityMismatch         = "TYP005"
	TYP006InvalidLambdaContext  = "TYP006"
	TYP007UnknownHigherOrderFn  = "TYP007"

	// IR/DAG (IR###)
	IR001NodeNotFound           = "IR001"
	IR002UnsupportedNodeType    = "IR002"
	IR003UnsupportedFunction    = "IR003"
	IR004UnsupportedOperation   = "IR004"
	IR005LambdaParamNotBound    = "IR005"
	IR006InvalidFieldAccess     = "IR006"
	IR007InternalBuildFailure   = "IR007"

	// DAG build (DAG###)
	DAG001BuildFailed = "DAG001"

	// Cache (CACHE###)
	CACHE001InvalidConfig = "CACHE001"
)
