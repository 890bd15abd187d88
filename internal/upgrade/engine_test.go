package upgrade

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maliboot/colaup/internal/errors"
)

const orderDO = `<?php

declare(strict_types=1);

namespace App\Order\Infra\DataObject;

use MaliBoot\Cola\Annotation\Column;
use MaliBoot\Cola\Annotation\DataObject;
use MaliBoot\Cola\Infra\AbstractDatabaseDO;

#[DataObject(table: "orders", connection: "default", cache: true)]
class OrderDO extends AbstractDatabaseDO
{
    use SoftDeletes, HasEvents;

    #[Column(name: "Order_ID", desc: "order identifier")]
    private string $orderId;

    public function total(): int
    {
        $sql = <<<SQL
            select  sum(amount)   from orders
            SQL;
        return   (int)   $this->db->scalar($sql);   // odd spacing stays
    }
}
`

const orderQuery = `<?php

namespace App\Order\Client\Dto\Query;

use MaliBoot\Dto\Annotation\DataTransferObject;

#[DataTransferObject(name: 'OrderListQuery', type: 'page')]
class OrderListQuery extends AbstractPageQuery
{
    #[Field(name: 'items', type: 'array', ref: 'OrderItem')]
    public array $items;
}
`

func TestTransformUnchanged(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no class", "<?php\n\nfunction helper() { return 1; }\n"},
		{"plain class", "<?php\nnamespace App;\n\nclass Foo extends Bar\n{\n    #[Column(name: 'A')]\n    public $a;\n}\n"},
		{"marker not first in group", "<?php\n#[Service, Entity]\nclass Foo extends Bar {}\n"},
		{"inline html", "<html><?php echo 1 ?>\n</html>\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Transform(tt.src, "Foo.php")
			require.NoError(t, res.Err)
			assert.Equal(t, Unchanged, res.Status)
			assert.Equal(t, tt.src, res.Text)
		})
	}
}

func TestTransformRewritesDataObject(t *testing.T) {
	res := Transform(orderDO, "OrderDO.php")
	require.NoError(t, res.Err)
	require.Equal(t, Rewritten, res.Status)

	out := res.Text
	assert.Contains(t, out, `#[Database(table: "orders", connection: "default", softDeletes: true)]`)
	assert.Contains(t, out, "class OrderDO implements WeakSetterInterface\n{\n    use HasEvents;\n")
	assert.Contains(t, out, "    /**\n     * order identifier.\n     */\n    #[ORM(name: \"Order_ID\")]\n    private string $orderId;")
	assert.Contains(t, out, "use MaliBoot\\Cola\\Annotation\\Database;")
	assert.NotContains(t, out, "AbstractDatabaseDO")
	assert.NotContains(t, out, "SoftDeletes")
	assert.NotContains(t, out, "cache")

	// The method body is not part of any rewrite.
	start := strings.Index(orderDO, "    public function total()")
	assert.Contains(t, out, orderDO[start:])
	assert.True(t, strings.HasPrefix(out, "<?php\n\ndeclare(strict_types=1);\n\nnamespace App\\Order\\Infra\\DataObject;\n\n"))
}

func TestTransformImportHygiene(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		file    string
		wantORM bool
	}{
		{"data object", orderDO, "OrderDO.php", true},
		{"query", orderQuery, "OrderListQuery.php", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Transform(tt.src, tt.file)
			require.NoError(t, res.Err)
			require.Equal(t, Rewritten, res.Status)

			assert.Equal(t, 1, strings.Count(res.Text, "use MaliBoot\\Lombok\\Contract\\WeakSetterInterface;"))
			assert.Equal(t, 1, strings.Count(res.Text, "use MaliBoot\\Lombok\\Annotation\\Of;"))
			if tt.wantORM {
				assert.Equal(t, 1, strings.Count(res.Text, "use MaliBoot\\Cola\\Annotation\\ORM;"))
			} else {
				assert.NotContains(t, res.Text, "Annotation\\ORM")
			}
		})
	}
}

func TestTransformPageQuery(t *testing.T) {
	res := Transform(orderQuery, "OrderListQuery.php")
	require.NoError(t, res.Err)
	require.Equal(t, Rewritten, res.Status)

	assert.Contains(t, res.Text, "#[DataTransferObject(name: 'OrderListQuery', type: 'query-page')]")
	assert.Contains(t, res.Text, "class OrderListQuery implements WeakSetterInterface\n")
	assert.Contains(t, res.Text, "    #[Of(arrayValue: OrderItem::class)]\n    public array $items;")
}

func TestTransformIsIdempotent(t *testing.T) {
	for _, src := range []string{orderDO, orderQuery} {
		first := Transform(src, "In.php")
		require.NoError(t, first.Err)
		require.Equal(t, Rewritten, first.Status)

		second := Transform(first.Text, "In.php")
		require.NoError(t, second.Err)
		assert.Equal(t, Unchanged, second.Status)
		assert.Equal(t, first.Text, second.Text)
	}
}

func TestTransformDuplicateFields(t *testing.T) {
	src := "<?php\nnamespace App\\Model;\n\n#[Entity]\nclass User\n{\n    public string $userName;\n    public string $username;\n}\n"

	res := Transform(src, "User.php")
	assert.Equal(t, Failed, res.Status)
	assert.Empty(t, res.Text)

	var dup *errors.DuplicateFieldError
	require.True(t, errors.As(res.Err, &dup))
	assert.Equal(t, `App\Model\User`, dup.Class)
	assert.Equal(t, []string{"username"}, dup.Fields)
	assert.Equal(t, "User.php", dup.Location().File)
}

func TestTransformSyntaxError(t *testing.T) {
	res := Transform("<?php\nclass Foo {\n    public function a() {\n", "Foo.php")
	assert.Equal(t, Failed, res.Status)

	var syn *errors.SyntaxError
	require.True(t, errors.As(res.Err, &syn))
	assert.Equal(t, "Foo.php", syn.Location().File)
}

func TestTransformUnsupportedArgument(t *testing.T) {
	src := "<?php\n#[ViewObject]\nclass UserVO\n{\n    #[Field(name: sprintf('%s', 'a'))]\n    public $a;\n}\n"

	res := Transform(src, "UserVO.php")
	assert.Equal(t, Failed, res.Status)
	assert.Equal(t, errors.UnsupportedConstructErrorCode, errors.CodeOf(res.Err))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "rewritten", Rewritten.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Status(42).String())
}
