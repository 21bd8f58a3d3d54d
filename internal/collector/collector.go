// Package collector implements the Symbol Collector (spec.md 4.7):
// walks a package's parsed files and emits the index shard for that
// package — symbols, references, inheritance/call relations (no extend
// relations are emitted) —
// grounded directly on original_source's index/SymbolCollector.{h,cpp}
// and its Symbol/Ref/Relation data model, driven here over the teacher's
// carrion/ast tree instead of a typechecked Cangjie AST.
package collector

import (
	"fmt"

	"github.com/javanhut/corelsp/internal/carrion/ast"
	"github.com/javanhut/corelsp/internal/compiler"
	"github.com/javanhut/corelsp/internal/index"
)

// Collect walks every parsed file of a package and returns its shard.
func Collect(pkgFullName string, files []compiler.ParsedFile) *index.Shard {
	c := &collectorState{pkg: pkgFullName, shard: index.NewShard(pkgFullName)}
	for _, f := range files {
		c.file = f.Path
		c.containerStack = nil
		for _, stmt := range f.Program.Statements {
			c.collectStatement(stmt)
		}
	}
	c.resolvePendingOverrides()
	return c.shard
}

type pendingOverride struct {
	methodID, parentName index.SymbolID
	methodName          string
}

type collectorState struct {
	pkg            string
	file           string
	shard          *index.Shard
	containerStack []index.SymbolID
	// classParent maps a class's name to its declared parent's name.
	// Ridden-by/overrides relations are emitted from pendingOverrides
	// once every class in the package has been seen.
	classParent      map[string]string
	classMethods     map[string]map[string]index.SymbolID
	pendingOverrides []pendingOverride
}

func (c *collectorState) exportID(name string) string {
	return fmt.Sprintf("%s.%s", c.pkg, name)
}

func (c *collectorState) currentContainer() index.SymbolID {
	if len(c.containerStack) == 0 {
		return index.InvalidSymbolID
	}
	return c.containerStack[len(c.containerStack)-1]
}

func (c *collectorState) emitDefinition(id index.SymbolID, name, kind string, tokLine, tokCol int, modifier index.Modifier) {
	loc := index.Location{
		FileURI: c.file,
		Begin:   index.Position{Line: tokLine, Column: tokCol},
		End:     index.Position{Line: tokLine, Column: tokCol + len(name)},
	}
	c.shard.Symbols = append(c.shard.Symbols, index.Symbol{
		ID:         id,
		Name:       name,
		Scope:      c.pkg,
		Definition: loc,
		Kind:       kind,
		Modifier:   modifier,
		OwningModule: c.pkg,
	})
	c.shard.Refs[id] = append(c.shard.Refs[id], index.Ref{
		Location:  loc,
		Kind:      index.RefDefinition,
		Container: c.currentContainer(),
	})
}

// emitParams emits a member symbol for each of a function or method's
// parameters, hashed as <outer-export-id>$<identifier> per spec.md 3.
func (c *collectorState) emitParams(outer index.SymbolID, params []*ast.Identifier) {
	for _, p := range params {
		id := index.MemberSymbolID(outer, p.Value)
		line, col := p.Position()
		loc := index.Location{
			FileURI: c.file,
			Begin:   index.Position{Line: line, Column: col},
			End:     index.Position{Line: line, Column: col + len(p.Value)},
		}
		c.shard.Symbols = append(c.shard.Symbols, index.Symbol{
			ID:            id,
			Name:          p.Value,
			Scope:         c.pkg,
			Definition:    loc,
			Kind:          "parameter",
			Modifier:      index.ModUndefined,
			IsMemberParam: true,
			OwningModule:  c.pkg,
		})
		c.shard.Refs[id] = append(c.shard.Refs[id], index.Ref{
			Location:  loc,
			Kind:      index.RefDefinition,
			Container: outer,
		})
	}
}

func (c *collectorState) emitReference(id index.SymbolID, line, col int, length int) {
	if id == index.InvalidSymbolID {
		return
	}
	loc := index.Location{
		FileURI: c.file,
		Begin:   index.Position{Line: line, Column: col},
		End:     index.Position{Line: line, Column: col + length},
	}
	c.shard.Refs[id] = append(c.shard.Refs[id], index.Ref{
		Location:  loc,
		Kind:      index.RefReference,
		Container: c.currentContainer(),
	})
	if container := c.currentContainer(); container != index.InvalidSymbolID {
		c.shard.Relations = append(c.shard.Relations, index.Relation{
			Subject: id, Predicate: index.CalledBy, Object: container,
		})
		c.shard.Relations = append(c.shard.Relations, index.Relation{
			Subject: container, Predicate: index.ContainedBy, Object: id,
		})
	}
}

func modifierFromName(name string) index.Modifier {
	if len(name) == 0 {
		return index.ModPublic
	}
	if name[0] == '_' {
		return index.ModPrivate
	}
	return index.ModPublic
}

func (c *collectorState) collectStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.FunctionStatement:
		c.collectFunction(s)
	case *ast.ClassStatement:
		c.collectClass(s)
	case *ast.ExpressionStatement:
		c.collectExpression(s.Expression)
	case *ast.AssignStatement:
		id := index.NewSymbolID(c.exportID(s.Name.Value))
		line, col := s.Name.Position()
		c.emitDefinition(id, s.Name.Value, "variable", line, col, modifierFromName(s.Name.Value))
		c.collectExpression(s.Value)
	case *ast.MemberAssignStatement:
		c.collectExpression(s.Object)
		c.collectExpression(s.Value)
	case *ast.ReturnStatement:
		c.collectExpression(s.ReturnValue)
	case *ast.IfStatement:
		c.collectIf(s)
	case *ast.WhileStatement:
		c.collectExpression(s.Condition)
		c.collectBlock(s.Body)
	case *ast.ForStatement:
		c.collectExpression(s.Iterable)
		c.collectBlock(s.Body)
	case *ast.BlockStatement:
		c.collectBlock(s)
	case *ast.ImportStatement:
		// Cross-package import edges are the Dependency Graph's concern
		// (internal/graph, populated by the workspace engine), not the
		// symbol index.
	}
}

func (c *collectorState) collectFunction(fn *ast.FunctionStatement) {
	id := index.NewSymbolID(c.exportID(fn.Name.Value))
	line, col := fn.Name.Position()
	c.emitDefinition(id, fn.Name.Value, "function", line, col, modifierFromName(fn.Name.Value))
	c.emitParams(id, fn.Parameters)

	c.containerStack = append(c.containerStack, id)
	if fn.Body != nil {
		c.collectBlock(fn.Body)
	}
	c.containerStack = c.containerStack[:len(c.containerStack)-1]
}

func (c *collectorState) collectClass(cls *ast.ClassStatement) {
	classID := index.NewSymbolID(c.exportID(cls.Name.Value))
	line, col := cls.Name.Position()
	c.emitDefinition(classID, cls.Name.Value, "class", line, col, modifierFromName(cls.Name.Value))

	if c.classParent == nil {
		c.classParent = map[string]string{}
		c.classMethods = map[string]map[string]index.SymbolID{}
	}

	if cls.Parent != nil {
		parentID := index.NewSymbolID(c.exportID(cls.Parent.Value))
		c.shard.Relations = append(c.shard.Relations, index.Relation{
			Subject: classID, Predicate: index.BaseOf, Object: parentID,
		})
		c.classParent[cls.Name.Value] = cls.Parent.Value
	}

	// The parser never populates ClassStatement.Methods — like the
	// teacher's own analyzeClassStatement, methods are plain
	// FunctionStatements found while walking the class Body, not a
	// separate field. Every other Body statement still gets collected
	// with classID on the container stack (so field assignments etc.
	// resolve inside the class's scope).
	methods := map[string]index.SymbolID{}
	c.containerStack = append(c.containerStack, classID)
	if cls.Body != nil {
		for _, stmt := range cls.Body.Statements {
			m, ok := stmt.(*ast.FunctionStatement)
			if !ok {
				c.collectStatement(stmt)
				continue
			}

			mid := index.NewSymbolID(c.exportID(cls.Name.Value + "." + m.Name.Value))
			mline, mcol := m.Name.Position()
			c.emitDefinition(mid, m.Name.Value, "method", mline, mcol, modifierFromName(m.Name.Value))
			c.emitParams(mid, m.Parameters)
			methods[m.Name.Value] = mid

			c.containerStack = append(c.containerStack, mid)
			if m.Body != nil {
				c.collectBlock(m.Body)
			}
			c.containerStack = c.containerStack[:len(c.containerStack)-1]

			if cls.Parent != nil {
				c.pendingOverrides = append(c.pendingOverrides, pendingOverride{
					methodID:   mid,
					parentName: index.NewSymbolID(c.exportID(cls.Parent.Value + "." + m.Name.Value)),
					methodName: m.Name.Value,
				})
			}
		}
	}
	c.classMethods[cls.Name.Value] = methods
	c.containerStack = c.containerStack[:len(c.containerStack)-1]
}

// resolvePendingOverrides emits ridden-by/overrides relations for methods
// that redefine a parent method with the same name, matched by identifier
// (an approximation of original_source's InheritDeclUtil matching by AST
// kind/static-ness/generic-ness/parameter compatibility, which requires a
// real typechecker this front end does not have).
func (c *collectorState) resolvePendingOverrides() {
	for _, p := range c.pendingOverrides {
		c.shard.Relations = append(c.shard.Relations, index.Relation{
			Subject: p.parentName, Predicate: index.RiddenBy, Object: p.methodID,
		})
		c.shard.Relations = append(c.shard.Relations, index.Relation{
			Subject: p.methodID, Predicate: index.Overrides, Object: p.parentName,
		})
	}
}

func (c *collectorState) collectIf(s *ast.IfStatement) {
	c.collectExpression(s.Condition)
	c.collectBlock(s.Consequence)
	if s.Alternative != nil {
		c.collectBlock(s.Alternative)
	}
}

func (c *collectorState) collectBlock(b *ast.BlockStatement) {
	if b == nil {
		return
	}
	for _, stmt := range b.Statements {
		c.collectStatement(stmt)
	}
}

func (c *collectorState) collectExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case nil:
		return
	case *ast.Identifier:
		id := index.NewSymbolID(c.exportID(e.Value))
		line, col := e.Position()
		c.emitReference(id, line, col, len(e.Value))
	case *ast.CallExpression:
		c.collectExpression(e.Function)
		for _, arg := range e.Arguments {
			c.collectExpression(arg)
		}
	case *ast.MemberExpression:
		c.collectExpression(e.Object)
	case *ast.InfixExpression:
		c.collectExpression(e.Left)
		c.collectExpression(e.Right)
	case *ast.PrefixExpression:
		c.collectExpression(e.Right)
	case *ast.IndexExpression:
		c.collectExpression(e.Left)
		c.collectExpression(e.Index)
	case *ast.ArrayLiteral:
		for _, el := range e.Elements {
			c.collectExpression(el)
		}
	case *ast.HashLiteral:
		for k, v := range e.Pairs {
			c.collectExpression(k)
			c.collectExpression(v)
		}
	}
}
