// Package fuzztests houses Go fuzz harnesses that exercise the component
// pipeline (document -> blocks -> sections -> module). Its goal is to smoke
// test robustness and guard against panics or hangs on arbitrary inputs.
//
// Назначение: прогонять произвольные байты через парсер блоков, компилятор
// шаблонов и полный конвейер.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/sfc, internal/template, internal/driver,
// internal/testkit.

package fuzztests
