// Copyright 2026 The odb Authors
// This file is part of the odb library.
//
// The odb library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The odb library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the odb library. If not, see <http://www.gnu.org/licenses/>.

package debugger

// State is the debugger's execution state.
type State int8

const (
	NotStarted State = iota
	RunningToFinish
	RunningBkp
	RunningStep
	RunningStepOver
	RunningStepOut
	Stopped
	Exit
	Error
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case RunningToFinish:
		return "running_tofinish"
	case RunningBkp:
		return "running_bkp"
	case RunningStep:
		return "running_step"
	case RunningStepOver:
		return "running_step_over"
	case RunningStepOut:
		return "running_step_out"
	case Stopped:
		return "stopped"
	case Exit:
		return "exit"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// IsRunning reports whether s is one of the running_* states.
func (s State) IsRunning() bool {
	switch s {
	case RunningToFinish, RunningBkp, RunningStep, RunningStepOver, RunningStepOut:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s is exit or error.
func (s State) IsTerminal() bool {
	return s == Exit || s == Error
}

// ResumeType selects which running_* state Resume enters.
type ResumeType int8

const (
	ResumeToFinish ResumeType = iota
	ResumeContinue            // stop on breakpoints
	ResumeStep
	ResumeStepOver
	ResumeStepOut
)

func (r ResumeType) state() State {
	switch r {
	case ResumeToFinish:
		return RunningToFinish
	case ResumeContinue:
		return RunningBkp
	case ResumeStep:
		return RunningStep
	case ResumeStepOver:
		return RunningStepOver
	case ResumeStepOut:
		return RunningStepOut
	default:
		return RunningToFinish
	}
}
