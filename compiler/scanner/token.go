package scanner

type (
	// Kind classifies a lexeme. End of line is a real token: it terminates
	// statements and headers, it is not whitespace.
	Kind int

	Token struct {
		Kind Kind
		Text string

		Line, Col int
	}
)

const (
	EOF Kind = iota
	EOL
	Error

	Ident
	GlobalIdent // spelled with a leading double underscore

	IntLit
	FloatLit
	StringLit
	MultilineStringLit
	Null

	Class
	If
	Else
	Is
	Return
	Var
	While
	Static
	Import
	For
	NumType
	StringType
	NullType

	IfjNamespace

	Plus
	Minus
	Star
	Slash
	Assign
	Less
	Greater
	LessEq
	GreaterEq
	Eq
	NotEq
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Dot
	Colon
	Question

	RangeExcl
	RangeIncl

	And
	Or
	Not
)

var kindNames = map[Kind]string{
	EOF:                "end of file",
	EOL:                "end of line",
	Error:              "invalid character",
	Ident:              "identifier",
	GlobalIdent:        "global identifier",
	IntLit:             "integer literal",
	FloatLit:           "float literal",
	StringLit:          "string literal",
	MultilineStringLit: "multiline string literal",
	Null:               "null",
	Class:              "class",
	If:                 "if",
	Else:               "else",
	Is:                 "is",
	Return:             "return",
	Var:                "var",
	While:              "while",
	Static:             "static",
	Import:             "import",
	For:                "for",
	NumType:            "Num",
	StringType:         "String",
	NullType:           "Null",
	IfjNamespace:       "Ifj",
	Plus:               "+",
	Minus:              "-",
	Star:               "*",
	Slash:              "/",
	Assign:             "=",
	Less:               "<",
	Greater:            ">",
	LessEq:             "<=",
	GreaterEq:          ">=",
	Eq:                 "==",
	NotEq:              "!=",
	LParen:             "(",
	RParen:             ")",
	LBrace:             "{",
	RBrace:             "}",
	Comma:              ",",
	Dot:                ".",
	Colon:              ":",
	Question:           "?",
	RangeExcl:          "..",
	RangeIncl:          "...",
	And:                "&&",
	Or:                 "||",
	Not:                "!",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "unknown token"
}
