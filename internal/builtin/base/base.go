// Package base provides the base builtin set: print, type and tostring.
package base

import (
	"fmt"
	"strings"

	"github.com/zboralski/galua/internal/builtin"
	"github.com/zboralski/galua/internal/value"
	"github.com/zboralski/galua/internal/vm"
)

func init() {
	builtin.RegisterFunc("base", "print", basePrint)
	builtin.RegisterFunc("base", "type", baseType)
	builtin.RegisterFunc("base", "tostring", baseTostring)
}

// basePrint writes its arguments space-separated to the state's output,
// followed by a newline, and returns nothing.
func basePrint(s *vm.State) int {
	parts := make([]string, 0, s.Top())
	for i := 1; i <= s.Top(); i++ {
		parts = append(parts, value.ToString(s.Get(i)))
	}
	fmt.Fprintln(s.Output(), strings.Join(parts, " "))
	return 0
}

// baseType pushes the type name of its first argument.
func baseType(s *vm.State) int {
	v := s.Get(1)
	s.Push(value.String(v.TypeName()))
	return 1
}

// baseTostring pushes the display form of its first argument.
func baseTostring(s *vm.State) int {
	v := s.Get(1)
	s.Push(value.String(value.ToString(v)))
	return 1
}
