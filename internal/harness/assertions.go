package harness

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/Calindra/solana-twitter/internal/program"
	"github.com/Calindra/solana-twitter/internal/store"
)

// validIdentifier matches valid SQL identifiers (table/column names).
// Only allows alphanumeric and underscore, must start with letter or underscore.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s by %s -> %s\n", i+1, event.Instruction, event.Signer, describe(event))
		}
	}

	return buf.String()
}

// assertTraceContains checks if the trace contains an event for the
// instruction with the given outcome (if set) and args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Instruction != assertion.Instruction {
			continue
		}
		if assertion.Outcome != "" && event.Outcome != assertion.Outcome {
			continue
		}
		if matchSubset(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s with outcome %q and args %v", assertion.Instruction, assertion.Outcome, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if instructions appear in the specified order.
// Instructions don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(assertion.Instructions) && event.Instruction == assertion.Instructions[next] {
			next++
		}
	}
	if next == len(assertion.Instructions) {
		return nil
	}

	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("instructions in order: %v", assertion.Instructions),
		Actual:   fmt.Sprintf("missing or out of order: %s", assertion.Instructions[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks if the instruction appears exactly Count times,
// restricted to Outcome when set.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Instruction != assertion.Instruction {
			continue
		}
		if assertion.Outcome != "" && event.Outcome != assertion.Outcome {
			continue
		}
		count++
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Instruction),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertRecord loads the record at the referenced address and compares its
// decoded fields with Expect.
func assertRecord(actx *AssertionContext, assertion Assertion) error {
	addr, err := actx.Refs.lookup(assertion.Address)
	if err != nil {
		return err
	}

	var fields map[string]any
	switch assertion.Kind {
	case KindNone:
		_, found, err := actx.Store.Load(actx.Ctx, addr)
		if err != nil {
			return fmt.Errorf("load %s: %w", assertion.Address, err)
		}
		if found {
			return &AssertionError{
				Type:     AssertRecord,
				Expected: fmt.Sprintf("no record at %s", assertion.Address),
				Actual:   "record exists",
			}
		}
		return nil

	case KindPost:
		post, err := actx.Program.GetPost(actx.Ctx, actx.Store, addr)
		if err != nil {
			return recordMissing(assertion, err)
		}
		fields = map[string]any{
			"author":    actx.Refs.renderAddress(post.Author.String()),
			"timestamp": post.Timestamp,
			"topic":     post.Topic,
			"content":   post.Content,
		}

	case KindProfile:
		profile, err := actx.Program.GetProfile(actx.Ctx, actx.Store, addr)
		if err != nil {
			return recordMissing(assertion, err)
		}
		fields = map[string]any{
			"owner":        actx.Refs.renderAddress(profile.Owner.String()),
			"linked_asset": actx.Refs.renderAddress(profile.LinkedAsset.String()),
		}
	}

	if !matchSubset(fields, assertion.Expect) {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("%s at %s with %v", assertion.Kind, assertion.Address, assertion.Expect),
			Actual:   fmt.Sprintf("%v", fields),
		}
	}
	return nil
}

func recordMissing(assertion Assertion, err error) error {
	if _, ok := program.AsError(err); !ok {
		return err
	}
	return &AssertionError{
		Type:     AssertRecord,
		Expected: fmt.Sprintf("%s at %s", assertion.Kind, assertion.Address),
		Actual:   err.Error(),
	}
}

// assertBalance checks the exact lamport balance of an account.
func assertBalance(actx *AssertionContext, assertion Assertion) error {
	addr, err := actx.Refs.lookup(assertion.Account)
	if err != nil {
		return err
	}
	got, err := actx.Store.Balance(actx.Ctx, addr)
	if err != nil {
		return err
	}
	if got != *assertion.Lamports {
		return &AssertionError{
			Type:     AssertBalance,
			Expected: fmt.Sprintf("%s holds %d lamports", assertion.Account, *assertion.Lamports),
			Actual:   fmt.Sprintf("%d lamports", got),
		}
	}
	return nil
}

// assertFinalState checks that exactly one row of a store table matches
// Where and holds the expected values. "$name" values resolve to addresses.
func assertFinalState(actx *AssertionContext, assertion Assertion) error {
	if !validIdentifier.MatchString(assertion.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", assertion.Table, validIdentifier.String())
	}

	where, err := actx.Refs.resolveMap(assertion.Where)
	if err != nil {
		return err
	}
	expect, err := actx.Refs.resolveMap(assertion.Expect)
	if err != nil {
		return err
	}

	whereSQL, whereArgs, err := buildWhereClause(where)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT * FROM %s", assertion.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	rows, err := actx.Store.DB().QueryContext(actx.Ctx, query, whereArgs...)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("query table %s", assertion.Table),
			Actual:   fmt.Sprintf("query error: %v", err),
		}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("get columns: %w", err)
	}

	if !rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "row not found",
		}
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return fmt.Errorf("scan row: %w", err)
	}

	if rows.Next() {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one row in %s where %s", assertion.Table, formatWhereClause(assertion.Where)),
			Actual:   "multiple rows matched (assertion is ambiguous)",
		}
	}

	actualRow := make(map[string]any, len(columns))
	for i, col := range columns {
		actualRow[col] = values[i]
	}

	keys := sortedKeys(expect)
	for _, key := range keys {
		actualValue, exists := actualRow[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present in result columns: %v", key, columns),
			}
		}
		if !stateValuesEqual(expect[key], actualValue) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %v (type %T)", key, expect[key], expect[key]),
				Actual:   fmt.Sprintf("field %q = %v (type %T)", key, actualValue, actualValue),
			}
		}
	}

	return nil
}

// buildWhereClause constructs a parameterized WHERE clause.
// Keys are sorted for determinism; column names are validated.
func buildWhereClause(where map[string]any) (string, []any, error) {
	if len(where) == 0 {
		return "", nil, nil
	}

	keys := sortedKeys(where)
	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))

	for _, key := range keys {
		if !validIdentifier.MatchString(key) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause: must match pattern %s", key, validIdentifier.String())
		}
		clauses = append(clauses, fmt.Sprintf("%s = ?", key))
		args = append(args, where[key])
	}

	return strings.Join(clauses, " AND "), args, nil
}

// formatWhereClause creates a human-readable description of WHERE conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	keys := sortedKeys(where)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stateValuesEqual compares an expected YAML value with a value scanned
// from SQLite, which returns int64 for integers and string or []byte for text.
func stateValuesEqual(expected, actual any) bool {
	if expected == nil || actual == nil {
		return expected == nil && actual == nil
	}

	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}

	switch exp := expected.(type) {
	case string:
		act, ok := actual.(string)
		return ok && exp == act
	case int:
		act, ok := actual.(int64)
		return ok && int64(exp) == act
	case int64:
		act, ok := actual.(int64)
		return ok && exp == act
	case bool:
		if act, ok := actual.(bool); ok {
			return exp == act
		}
		if act, ok := actual.(int64); ok {
			return exp == (act != 0)
		}
		return false
	}

	return reflect.DeepEqual(expected, actual)
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Ctx     context.Context
	Store   *store.Store
	Program *program.Program
	Refs    *refs
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides state access for record, balance and
// final_state assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertRecord:
			err = withState(i, assertion, actx, assertRecord)
		case AssertBalance:
			err = withState(i, assertion, actx, assertBalance)
		case AssertFinalState:
			err = withState(i, assertion, actx, assertFinalState)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func withState(i int, assertion Assertion, actx *AssertionContext, check func(*AssertionContext, Assertion) error) error {
	if actx == nil || actx.Store == nil {
		return fmt.Errorf("assertion[%d]: %s requires store context", i, assertion.Type)
	}
	return check(actx, assertion)
}
