// Package fuzztests houses Go fuzz harnesses for the cbridge front half:
// declaration tree decoding (JSON and msgpack), linking and wrapper
// generation. Its goal is to guard against panics and hangs on arbitrary
// trees.
//
// Назначение: подавать байты в decl.Decode и прогонять результат через
// driver.Generate.
//
// Не делает: запись файлов, запуск CLI.
//
// Зависимости: internal/decl, internal/driver, internal/diag,
// internal/symbols, internal/testkit.

package fuzztests
