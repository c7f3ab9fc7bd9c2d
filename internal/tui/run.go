package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Result 返回 TUI 退出时的必要信息。
type Result struct {
	Selected string
	Y        float64
	// Top 是退出时 pane 的真实偏移。
	Top float64
}

// Run 封装 Bubble Tea 入口，返回最终的 UI 结果。
func Run(opts Options) (Result, error) {
	model := New(opts)
	defer model.Close()
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m, err := program.Run()
	if err != nil {
		return Result{}, err
	}
	tuiModel, ok := m.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	return Result{Selected: tuiModel.Selected(), Y: tuiModel.Y(), Top: tuiModel.Top()}, nil
}
