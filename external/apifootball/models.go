package apifootball

import (
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
)

// envelope is the provider's uniform response wrapper. The errors field is an
// empty array on success and an object on failure, so it needs a lenient
// decoder.
type envelope[T any] struct {
	Errors   apiErrors `json:"errors"`
	Results  int       `json:"results"`
	Response []T       `json:"response"`
}

type apiErrors []string

func (e *apiErrors) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" {
		*e = nil
		return nil
	}

	var asMap map[string]string
	if err := sonic.Unmarshal(data, &asMap); err == nil {
		out := make([]string, 0, len(asMap))
		for key, value := range asMap {
			out = append(out, key+": "+value)
		}
		*e = out
		return nil
	}

	var asList []string
	if err := sonic.Unmarshal(data, &asList); err != nil {
		return err
	}
	*e = asList
	return nil
}

func (e apiErrors) String() string {
	return strings.Join(e, "; ")
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	Teams struct {
		Home fixtureTeam `json:"home"`
		Away fixtureTeam `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
	Events     []eventItem     `json:"events"`
	Statistics []statisticItem `json:"statistics"`
}

type fixtureTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type eventItem struct {
	Time struct {
		Elapsed int  `json:"elapsed"`
		Extra   *int `json:"extra"`
	} `json:"time"`
	Team   fixtureTeam `json:"team"`
	Player struct {
		Name string `json:"name"`
	} `json:"player"`
	Assist struct {
		Name string `json:"name"`
	} `json:"assist"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

type statisticItem struct {
	Team       fixtureTeam `json:"team"`
	Statistics []struct {
		Type  string    `json:"type"`
		Value statValue `json:"value"`
	} `json:"statistics"`
}

// statValue tolerates the provider's mixed stat encodings: numbers, numeric
// strings, percentages like "54%", and null.
type statValue struct {
	n  int
	ok bool
}

func (v *statValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*v = statValue{}
		return nil
	}
	trimmed = strings.Trim(trimmed, `"`)
	trimmed = strings.TrimSuffix(trimmed, "%")
	n, err := strconv.Atoi(strings.TrimSpace(trimmed))
	if err != nil {
		*v = statValue{}
		return nil
	}
	*v = statValue{n: n, ok: true}
	return nil
}

func (v statValue) intPtr() *int {
	if !v.ok {
		return nil
	}
	n := v.n
	return &n
}
