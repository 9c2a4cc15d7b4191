package migrate

import (
	"encoding/json"
	"fmt"
)

// Plan is one migration: an ordered list of actions with a version number.
// CreatedAt is an RFC 3339 timestamp set when the plan file is written.
type Plan struct {
	Comment   *string  `json:"comment,omitempty"`
	CreatedAt *string  `json:"created_at,omitempty"`
	Version   uint32   `json:"version"`
	Actions   []Action `json:"actions"`
}

type planJSON struct {
	Comment   *string           `json:"comment,omitempty"`
	CreatedAt *string           `json:"created_at,omitempty"`
	Version   uint32            `json:"version"`
	Actions   []json.RawMessage `json:"actions"`
}

// MarshalJSON encodes each action as a tagged object with a "type" key.
func (p Plan) MarshalJSON() ([]byte, error) {
	out := planJSON{
		Comment:   p.Comment,
		CreatedAt: p.CreatedAt,
		Version:   p.Version,
		Actions:   make([]json.RawMessage, 0, len(p.Actions)),
	}
	for _, a := range p.Actions {
		raw, err := MarshalAction(a)
		if err != nil {
			return nil, err
		}
		out.Actions = append(out.Actions, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the tagged action objects.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var raw planJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	actions := make([]Action, 0, len(raw.Actions))
	for i, r := range raw.Actions {
		a, err := UnmarshalAction(r)
		if err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	*p = Plan{Comment: raw.Comment, CreatedAt: raw.CreatedAt, Version: raw.Version, Actions: actions}
	return nil
}

// MarshalAction encodes a single action with its "type" tag.
func MarshalAction(a Action) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(a.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = tag
	return json.Marshal(fields)
}

// UnmarshalAction decodes a single tagged action object.
func UnmarshalAction(data []byte) (Action, error) {
	var tag struct {
		Type ActionType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}
	decode := func(dst Action) (Action, error) {
		if err := json.Unmarshal(data, dst); err != nil {
			return nil, err
		}
		return dst, nil
	}
	switch tag.Type {
	case ActionCreateTable:
		a, err := decode(&CreateTable{})
		if err != nil {
			return nil, err
		}
		return *a.(*CreateTable), nil
	case ActionDeleteTable:
		a, err := decode(&DeleteTable{})
		if err != nil {
			return nil, err
		}
		return *a.(*DeleteTable), nil
	case ActionAddColumn:
		a, err := decode(&AddColumn{})
		if err != nil {
			return nil, err
		}
		return *a.(*AddColumn), nil
	case ActionRenameColumn:
		a, err := decode(&RenameColumn{})
		if err != nil {
			return nil, err
		}
		return *a.(*RenameColumn), nil
	case ActionDeleteColumn:
		a, err := decode(&DeleteColumn{})
		if err != nil {
			return nil, err
		}
		return *a.(*DeleteColumn), nil
	case ActionModifyColumnType:
		a, err := decode(&ModifyColumnType{})
		if err != nil {
			return nil, err
		}
		return *a.(*ModifyColumnType), nil
	case ActionModifyColumnNullable:
		a, err := decode(&ModifyColumnNullable{})
		if err != nil {
			return nil, err
		}
		return *a.(*ModifyColumnNullable), nil
	case ActionModifyColumnDefault:
		a, err := decode(&ModifyColumnDefault{})
		if err != nil {
			return nil, err
		}
		return *a.(*ModifyColumnDefault), nil
	case ActionModifyColumnComment:
		a, err := decode(&ModifyColumnComment{})
		if err != nil {
			return nil, err
		}
		return *a.(*ModifyColumnComment), nil
	case ActionAddIndex:
		a, err := decode(&AddIndex{})
		if err != nil {
			return nil, err
		}
		return *a.(*AddIndex), nil
	case ActionRemoveIndex:
		a, err := decode(&RemoveIndex{})
		if err != nil {
			return nil, err
		}
		return *a.(*RemoveIndex), nil
	case ActionAddConstraint:
		a, err := decode(&AddConstraint{})
		if err != nil {
			return nil, err
		}
		return *a.(*AddConstraint), nil
	case ActionRemoveConstraint:
		a, err := decode(&RemoveConstraint{})
		if err != nil {
			return nil, err
		}
		return *a.(*RemoveConstraint), nil
	case ActionRenameTable:
		a, err := decode(&RenameTable{})
		if err != nil {
			return nil, err
		}
		return *a.(*RenameTable), nil
	case ActionRawSQL:
		a, err := decode(&RawSQL{})
		if err != nil {
			return nil, err
		}
		return *a.(*RawSQL), nil
	default:
		return nil, fmt.Errorf("unknown action type: %q", tag.Type)
	}
}
