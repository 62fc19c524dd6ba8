package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plus_admin_v1/internal/errcode"
)

func TestNewResponse_DefaultDesc(t *testing.T) {
	resp := NewResponse(errcode.NoData, "", nil)
	assert.Equal(t, errcode.NoData, resp.Code)
	assert.Equal(t, "数据不存在", resp.Msg)
	assert.Equal(t, "数据不存在", resp.Desc)
}

func TestNewResponse_UnknownCode(t *testing.T) {
	resp := NewResponse(errcode.Code("4999"), "x", nil)
	assert.Equal(t, errcode.UnknownErr, resp.Code)
	assert.Equal(t, "未知错误", resp.Msg)
	assert.Equal(t, "x", resp.Desc)
}

func TestResponse_JSON(t *testing.T) {
	raw, err := json.Marshal(OK("", []int{1, 2}))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "0", m["code"])
	assert.Equal(t, "成功", m["msg"])
	_, hasTotal := m["total"]
	assert.False(t, hasTotal)

	raw, err = json.Marshal(OK("", []int{}).WithTotal(7))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.EqualValues(t, 7, m["total"])
}
