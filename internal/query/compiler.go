// Package query compiles catalog queries into SQL predicate, sort and
// pagination fragments executed by the product repository. Compilation is
// pure: no I/O, no process state.
package query

import (
	"fmt"
	"strings"

	"kommshop-catalog/internal/domain"
)

// Column aliases used by the product repository's denormalizing join.
const (
	productAlias  = "p"
	categoryAlias = "c"
)

// sortColumns whitelists sortable fields to prevent SQL injection and maps
// the wire-level field names onto columns
var sortColumns = map[string]string{
	"id":          productAlias + ".id",
	"name":        productAlias + ".name",
	"description": productAlias + ".description",
	"price":       productAlias + ".price",
	"category":    categoryAlias + ".name",
	"createdAt":   productAlias + ".created_at",
	"created_at":  productAlias + ".created_at",
	"updatedAt":   productAlias + ".updated_at",
	"updated_at":  productAlias + ".updated_at",
}

// DefaultOrderBy applies when a query carries no usable sort entries
const DefaultOrderBy = productAlias + ".name ASC"

// Compiled is the result of compiling a CatalogQuery: a WHERE predicate
// with positional args, an ORDER BY list, and LIMIT/OFFSET bounds. Where is
// empty when the query matches all products. The count query reuses Where
// and Args and ignores the rest.
type Compiled struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int
}

// Compile turns a catalog query into its executable fragments. The name and
// price clauses combine with OR when the query is inclusive, AND otherwise;
// description and category clauses always narrow the result.
func Compile(q domain.CatalogQuery) Compiled {
	q.Normalize()

	b := &builder{}

	var nameClause, priceClause string
	if f := q.Filters; f != nil {
		if f.Name != "" {
			nameClause = fmt.Sprintf("%s.name ILIKE %s", productAlias, b.bind(Pattern(f.Name)))
		}
		priceClause = compilePrice(b, f.Price)
	}

	var clauses []string
	switch {
	case nameClause != "" && priceClause != "":
		op := " AND "
		if q.Inclusive {
			op = " OR "
		}
		clauses = append(clauses, "("+nameClause+op+priceClause+")")
	case nameClause != "":
		clauses = append(clauses, nameClause)
	case priceClause != "":
		clauses = append(clauses, priceClause)
	}

	if f := q.Filters; f != nil {
		if f.Description != "" {
			clauses = append(clauses, fmt.Sprintf("%s.description ILIKE %s", productAlias, b.bind(Pattern(f.Description))))
		}
		if f.Category != "" {
			clauses = append(clauses, fmt.Sprintf("%s.name ILIKE %s", categoryAlias, b.bind(Pattern(f.Category))))
		}
	}

	return Compiled{
		Where:   strings.Join(clauses, " AND "),
		Args:    b.args,
		OrderBy: compileSort(q.Sort),
		Limit:   q.Limit,
		Offset:  (q.Page - 1) * q.Limit,
	}
}

// compilePrice emits a range predicate: min alone is a lower bound, max
// alone an upper bound, both a closed interval
func compilePrice(b *builder, r *domain.PriceRange) string {
	if r == nil {
		return ""
	}
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("(%[1]s.price >= %[2]s AND %[1]s.price <= %[3]s)",
			productAlias, b.bind(*r.Min), b.bind(*r.Max))
	case r.Min != nil:
		return fmt.Sprintf("%s.price >= %s", productAlias, b.bind(*r.Min))
	case r.Max != nil:
		return fmt.Sprintf("%s.price <= %s", productAlias, b.bind(*r.Max))
	}
	return ""
}

// compileSort maps sort entries onto whitelisted columns, dropping unknown
// fields, and falls back to the default order when nothing survives
func compileSort(entries []domain.SortEntry) string {
	var keys []string
	for _, e := range entries {
		col, ok := sortColumns[e.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if strings.EqualFold(string(e.Direction), string(domain.SortDesc)) {
			dir = "DESC"
		}
		keys = append(keys, col+" "+dir)
	}
	if len(keys) == 0 {
		return DefaultOrderBy
	}
	return strings.Join(keys, ", ")
}

// Pattern builds a non-anchored, case-insensitive-safe ILIKE pattern from a
// raw substring, escaping the ILIKE metacharacters in the input
func Pattern(substring string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(substring) + "%"
}

// builder numbers positional arguments as clauses are emitted
type builder struct {
	args []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}
