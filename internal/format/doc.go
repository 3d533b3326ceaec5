// Package format prints an ast.Program back as canonical tensa source.
//
// Назначение: команда fmt и проверка round-trip поверх уже разобранного AST.
// Не делает: генерации Go-кода или IO.
// Зависимости: internal/ast, internal/parser, internal/types.
package format
