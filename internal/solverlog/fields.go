package solverlog

import "time"

// Common field constructors.

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component field helpers specific to the solver's own concerns.

func Component(name string) Field {
	return String("component", name)
}

// Rank identifies which worker emitted the log line.
func Rank(rank int) Field {
	return Int("rank", rank)
}

// WorldSize records how many workers were cooperating in the run.
func WorldSize(n int) Field {
	return Int("world_size", n)
}

// TraceID tags every log line of one rank's run with that run's id. Each
// rank mints its own id, so the ids of different ranks do not match.
func TraceID(id string) Field {
	return String("trace_id", id)
}

func NodesPopped(n int64) Field {
	return Int64("nodes_popped", n)
}

func NodesPruned(n int64) Field {
	return Int64("nodes_pruned", n)
}

func ToursCompleted(n int64) Field {
	return Int64("tours_completed", n)
}

func BestCost(cost int) Field {
	return Int("best_cost", cost)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
