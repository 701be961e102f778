package compiler

// grammar.go documents and names the IQL-SQL productions this parser
// recognizes. cdb externalizes none of its grammar (it hand-rolls a
// recursive descent parser directly over tokens in compiler/parser.go); this
// module follows the same approach but names every production with the tag
// constants below so the parse tree stays self-describing (spec.md §3 "Parse
// tree node" / §4.1).
//
// Grammar (terminals in quotes, keywords in caps, case-insensitive):
//
//	select_expr        := ["EXPLAIN" ["QUERY" "PLAN"]] "SELECT" select_list
//	                       [from_clause] [where_clause] [adding_clause]
//	                       [order_by_clause] [limit_clause]
//	select_list        := "*" | selection ("," selection)*
//	selection          := logpdf_clause | rowid_selection | column_selection
//	column_selection   := name ["AS" name]
//	rowid_selection    := "ROWID"
//	logpdf_clause       := ("DENSITY"|"PROBABILITY") "OF" event_list
//	                       ["UNDER" model_expr] ["AS" name]
//	from_clause        := "FROM" table_expr
//	table_expr         := name | "(" generated_table_expr ")" |
//	                       "(" relation_value ")"
//	generated_table_expr := generate_expr
//	where_clause       := "WHERE" condition
//	condition          := or_condition
//	or_condition        := and_condition ("OR" and_condition)*
//	and_condition       := base_condition ("AND" base_condition)*
//	base_condition      := "(" condition ")" | presence_condition |
//	                       absence_condition | equality_condition |
//	                       predicate_condition
//	presence_condition  := name "IS" "NOT" "NULL"
//	absence_condition   := name "IS" "NULL"
//	equality_condition  := name "=" expr
//	predicate_condition := name predicate_expr expr
//	predicate_expr      := "<" | ">" | "<=" | ">=" | "<>" | "!="
//	adding_clause       := "ADDING" name
//	order_by_clause     := "ORDER" "BY" name [ascending|descending]
//	ascending           := "ASC"
//	descending          := "DESC"
//	limit_clause        := "LIMIT" nat
//	model_expr          := name | "(" model_expr ")" | generate_expr |
//	                       conditioned_by_expr | constrained_by_expr
//	conditioned_by_expr := model_expr "GIVEN" event_list
//	constrained_by_expr := model_expr "CONSTRAINED" variable_list
//	                       ["GIVEN" event_list]
//	generate_expr        := "GENERATE" variable_list "UNDER" model_expr
//	                       ["GIVEN" event_list]
//	event_list           := "*" | map_entry_expr (("AND"|",") map_entry_expr)*
//	map_entry_expr        := name ("="|predicate_expr) expr
//	variable_list         := name ("," name)*
//	insert_expr           := "INSERT" "INTO" name "VALUES" value_lists_full
//	relation_value        := "(" variable_list ")" "VALUES" value_lists_full
//	value_lists_full      := value_list ("," value_list)*
//	value_list            := "(" expr ("," expr)* ")"
//
// value_lists_sparse (a list of (nat, value_list) sparse_entry pairs) is a
// tree shape that ReadLiteral understands; the parser produces no such node.
//	expr                 := ref | literal
//	ref                  := name
//	literal              := bool | float | int | nat | string | null
//	name                := simple_symbol
//	simple_symbol         := IDENTIFIER
//	bool                 := "TRUE" | "FALSE"
//	null                 := "NULL"
const (
	TagSelectExpr         = "select_expr"
	TagSelectList         = "select_list"
	TagColumnSelection    = "column_selection"
	TagRowIDSelection     = "rowid_selection"
	TagLogpdfClause       = "logpdf_clause"
	TagProbabilityClause  = "probability_clause"
	TagFromClause         = "from_clause"
	TagTableExpr          = "table_expr"
	TagGeneratedTableExpr = "generated_table_expr"
	TagWhereClause        = "where_clause"
	TagOrCondition        = "or_condition"
	TagAndCondition       = "and_condition"
	TagPresenceCondition  = "presence_condition"
	TagAbsenceCondition   = "absence_condition"
	TagEqualityCondition  = "equality_condition"
	TagPredicateCondition = "predicate_condition"
	TagPredicateExpr      = "predicate_expr"
	TagAddingClause       = "adding_clause"
	TagOrderByClause      = "order_by_clause"
	TagAscending          = "ascending"
	TagDescending         = "descending"
	TagAsClause           = "as_clause"
	TagLimitClause        = "limit_clause"
	TagModelExpr          = "model_expr"
	TagConditionedByExpr  = "conditioned_by_expr"
	TagConstrainedByExpr  = "constrained_by_expr"
	TagGenerateExpr       = "generate_expr"
	TagEventList          = "event_list"
	TagMapEntryExpr       = "map_entry_expr"
	TagMapExpr            = "map_expr"
	TagMapList            = "map_list"
	TagVariableList       = "variable_list"
	TagInsertExpr         = "insert_expr"
	TagRelationValue      = "relation_value"
	TagValueListsFull     = "value_lists_full"
	TagValueListsSparse   = "value_lists_sparse"
	TagSparseEntry        = "sparse_entry"
	TagValueList          = "value_list"
	TagName               = "name"
	TagRef                = "ref"
	TagSimpleSymbol       = "simple_symbol"
	TagBool               = "bool"
	TagInt                = "int"
	TagNat                = "nat"
	TagFloat              = "float"
	TagString             = "string"
	TagNull               = "null"
	TagStar               = "star"
)
