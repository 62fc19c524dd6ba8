package viewset

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plus_admin_v1/internal/model"
)

func TestMixin_CreateRequiredMissing(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)

	resp := doRequest(t, r, http.MethodPost, "/customer/create", "admin", map[string]any{"name": "c"})
	assert.Equal(t, "4101", resp.Code)
	assert.Contains(t, resp.Desc, "sn")

	resp = doRequest(t, r, http.MethodPost, "/customer/create", "admin", map[string]any{"name": "c", "sn": ""})
	assert.Equal(t, "4101", resp.Code)
	assert.EqualValues(t, 0, countCustomers(db))
}

func TestMixin_Create(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)

	resp := doRequest(t, r, http.MethodPost, "/customer/create", "admin", map[string]any{
		"name": "客户A", "sn": "A001", "typ": 2, "is_deleted": 5, "create_user": "hacker",
	})
	require.Equal(t, "0", resp.Code)

	var data map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "客户A", data["name"])
	assert.Equal(t, "外部客户", data["typ_label"])
	assert.Equal(t, "admin", data["create_user"])
	assert.Equal(t, "admin", data["update_user"])
	assert.EqualValues(t, 0, data["is_deleted"])
}

func TestMixin_CreateEnumAndValidation(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)

	resp := doRequest(t, r, http.MethodPost, "/customer/create", "admin", map[string]any{"name": "c", "sn": "s", "typ": 9})
	assert.Equal(t, "4103", resp.Code)

	resp = doRequest(t, r, http.MethodPost, "/customer/create", "admin", map[string]any{"name": "c", "sn": "s", "typ": "abc"})
	assert.Equal(t, "4102", resp.Code)
	assert.EqualValues(t, 0, countCustomers(db))
}

func TestMixin_CreateDuplicate(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)

	resp := doRequest(t, r, http.MethodPost, "/customer/create", "admin", map[string]any{"name": "c", "sn": "dup"})
	require.Equal(t, "0", resp.Code)
	resp = doRequest(t, r, http.MethodPost, "/customer/create", "admin", map[string]any{"name": "c2", "sn": "dup"})
	assert.Equal(t, "4402", resp.Code)
	assert.Equal(t, "数据已存在", resp.Msg)
}

func TestMixin_Update(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)
	c := &model.SysCustomer{Name: "c", SN: "s", Typ: 1}
	require.NoError(t, db.Create(c).Error)

	resp := doRequest(t, r, http.MethodPut, "/customer/update", "alice", map[string]any{"name": "c-new"})
	assert.Equal(t, "4101", resp.Code)

	resp = doRequest(t, r, http.MethodPut, "/customer/update", "alice", map[string]any{"id": 999, "name": "x"})
	assert.Equal(t, "4401", resp.Code)

	resp = doRequest(t, r, http.MethodPut, "/customer/update", "alice", map[string]any{"id": c.ID, "typ": 3})
	assert.Equal(t, "4103", resp.Code)

	resp = doRequest(t, r, http.MethodPut, "/customer/update", "alice", map[string]any{"id": c.ID, "name": "c-new", "typ": 2})
	require.Equal(t, "0", resp.Code)

	var got model.SysCustomer
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, "c-new", got.Name)
	assert.Equal(t, "s", got.SN)
	assert.Equal(t, 2, got.Typ)
	assert.Equal(t, "alice", got.UpdateUser)
	assert.Equal(t, c.ID, got.ID)
}

func TestMixin_SoftDeleteThenHardDelete(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)
	c := &model.SysCustomer{Name: "c", SN: "s", Typ: 1}
	require.NoError(t, db.Create(c).Error)

	resp := doRequest(t, r, http.MethodDelete, "/customer/delete", "admin", map[string]any{})
	assert.Equal(t, "4101", resp.Code)

	resp = doRequest(t, r, http.MethodDelete, "/customer/delete", "admin", map[string]any{"id": c.ID})
	require.Equal(t, "0", resp.Code)
	assert.Equal(t, "1", string(resp.Data))

	var raw model.SysCustomer
	require.NoError(t, db.First(&raw, c.ID).Error)
	assert.Equal(t, c.ID, raw.IsDeleted)
	assert.Equal(t, "admin", raw.UpdateUser)

	resp = doRequest(t, r, http.MethodGet, "/customer/query", "alice", nil)
	require.Equal(t, "0", resp.Code)
	assert.EqualValues(t, 0, *resp.Total)

	// 已删除记录不可更新
	resp = doRequest(t, r, http.MethodPut, "/customer/update", "alice", map[string]any{"id": c.ID, "name": "x"})
	assert.Equal(t, "4401", resp.Code)

	resp = doRequest(t, r, http.MethodDelete, "/customer/abs_delete", "admin", map[string]any{"id": c.ID})
	require.Equal(t, "0", resp.Code)
	assert.EqualValues(t, 0, countCustomers(db))
}

func TestMixin_Undelete(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)
	c := &model.SysCustomer{Name: "c", SN: "s", Typ: 1}
	require.NoError(t, db.Create(c).Error)

	resp := doRequest(t, r, http.MethodDelete, "/customer/delete", "admin", map[string]any{"id": c.ID})
	require.Equal(t, "0", resp.Code)
	resp = doRequest(t, r, http.MethodDelete, "/customer/delete", "admin", map[string]any{"id": c.ID, "is_deleted": false})
	require.Equal(t, "0", resp.Code)

	var raw model.SysCustomer
	require.NoError(t, db.First(&raw, c.ID).Error)
	assert.EqualValues(t, 0, raw.IsDeleted)
}

func TestMixin_QueryPagination(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)
	for i := 1; i <= 25; i++ {
		require.NoError(t, db.Create(&model.SysCustomer{Name: fmt.Sprintf("c%02d", i), SN: fmt.Sprintf("s%02d", i), Typ: 1}).Error)
	}

	resp := doRequest(t, r, http.MethodGet, "/customer/query?offset=1&limit=10", "alice", nil)
	require.Equal(t, "0", resp.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 10)
	assert.EqualValues(t, 25, *resp.Total)

	resp = doRequest(t, r, http.MethodPost, "/customer/query", "alice", map[string]any{"offset": 3, "limit": 10})
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 5)
	assert.EqualValues(t, 25, *resp.Total)

	resp = doRequest(t, r, http.MethodGet, "/customer/query", "alice", nil)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 25)
	assert.EqualValues(t, 25, *resp.Total)

	// 非数字分页参数视为不分页
	resp = doRequest(t, r, http.MethodGet, "/customer/query?offset=a&limit=10", "alice", nil)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 25)

	// 同条件两次查询结果一致
	first := doRequest(t, r, http.MethodGet, "/customer/query", "alice", nil)
	second := doRequest(t, r, http.MethodGet, "/customer/query", "alice", nil)
	assert.JSONEq(t, string(first.Data), string(second.Data))
}

func TestMixin_QueryFilters(t *testing.T) {
	db := setupViewsetTestDB(t)
	r := setupCustomerRouter(db)
	for i := 1; i <= 6; i++ {
		require.NoError(t, db.Create(&model.SysCustomer{Name: fmt.Sprintf("客户%d", i), SN: fmt.Sprintf("s%d", i), Typ: 1 + i%2}).Error)
	}

	var list []map[string]any
	resp := doRequest(t, r, http.MethodGet, "/customer/query?sn=s1&sn=s2&sn=s9", "alice", nil)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 2)

	resp = doRequest(t, r, http.MethodGet, "/customer/query?typ=2&sn=", "alice", nil)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 3)

	resp = doRequest(t, r, http.MethodPost, "/customer/query", "alice", map[string]any{"name": "户3"})
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "客户3", list[0]["name"])

	// 模糊字段重复传值按 OR 匹配
	query := url.Values{"name": {"户3", "户5"}}
	resp = doRequest(t, r, http.MethodGet, "/customer/query?"+query.Encode(), "alice", nil)
	require.Equal(t, "0", resp.Code, resp.Desc)
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	require.Len(t, list, 2)
	names := []any{list[0]["name"], list[1]["name"]}
	assert.ElementsMatch(t, []any{"客户3", "客户5"}, names)

	// 非查询字段忽略
	resp = doRequest(t, r, http.MethodPost, "/customer/query", "alice", map[string]any{"remark": "nothing"})
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Len(t, list, 6)

	resp = doRequest(t, r, http.MethodGet, "/customer/query?id=abc", "alice", nil)
	assert.Equal(t, "4102", resp.Code)
}

func TestSchema_Coerce(t *testing.T) {
	s := NewSchema(
		Field{Name: "role", Type: TypeInt, Choices: model.UserRoleChoices},
		Field{Name: "active", Type: TypeBool},
		Field{Name: "method", Type: TypeString, Upper: true, CreateRequired: true},
		Field{Name: "name", Like: true},
	)

	role, _ := s.Field("role")
	v, err := role.Coerce(json.Number("1"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	assert.Equal(t, "管理员", role.Label(json.Number("1")))
	_, err = role.Coerce("3")
	assert.Error(t, err)

	active, _ := s.Field("active")
	v, err = active.Coerce("false")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	method, _ := s.Field("method")
	assert.True(t, method.Create)
	v, _ = method.Coerce("delete")
	assert.Equal(t, "DELETE", v)

	name, _ := s.Field("name")
	assert.True(t, name.Query)
	assert.Len(t, s.QueryFields(), 1)
	assert.Len(t, s.ChoiceFields(), 1)
}
