package postgres

// System schemas never surface in generated bindings. Types from them are
// still collected: builtin ids resolve through the Types list.
const systemSchemas = `('pg_catalog', 'information_schema', 'pg_toast')`

const schemasQuery = `
SELECT n.oid::int8,
       n.nspname,
       pg_get_userbyid(n.nspowner)
FROM pg_namespace n
WHERE n.nspname NOT IN ` + systemSchemas + `
  AND n.nspname NOT LIKE 'pg\_temp\_%'
  AND n.nspname NOT LIKE 'pg\_toast\_temp\_%'
  AND has_schema_privilege(n.oid, 'USAGE')
ORDER BY n.nspname`

const relationsQuery = `
SELECT c.oid::int8,
       n.nspname,
       c.relname,
       c.relkind::text,
       (c.relkind IN ('r', 'p')
         OR (c.relkind IN ('v', 'f')
             AND (pg_relation_is_updatable(c.oid::regclass, false) & 20) = 20)),
       obj_description(c.oid, 'pg_class')
FROM pg_class c
JOIN pg_namespace n ON n.oid = c.relnamespace
WHERE c.relkind IN ('r', 'p', 'v', 'm', 'f')
  AND NOT c.relispartition
  AND n.nspname NOT IN ` + systemSchemas + `
ORDER BY n.nspname, c.relname`

const columnsQuery = `
SELECT c.oid::int8,
       n.nspname,
       c.relname,
       a.attname,
       COALESCE(bt.typname, t.typname),
       a.attnum::int8,
       NOT (a.attnotnull OR (t.typtype = 'd' AND t.typnotnull)),
       a.attidentity IN ('a', 'd'),
       CASE a.attidentity WHEN 'a' THEN 'ALWAYS' WHEN 'd' THEN 'BY DEFAULT' END,
       pg_get_expr(ad.adbin, ad.adrelid),
       (c.relkind IN ('r', 'p')
         OR (c.relkind IN ('v', 'f') AND pg_column_is_updatable(c.oid, a.attnum, false))),
       col_description(c.oid, a.attnum)
FROM pg_attribute a
JOIN pg_class c ON c.oid = a.attrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
JOIN pg_type t ON t.oid = a.atttypid
LEFT JOIN pg_type bt ON t.typtype = 'd' AND bt.oid = t.typbasetype
LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
WHERE a.attnum > 0
  AND NOT a.attisdropped
  AND c.relkind IN ('r', 'p', 'v', 'm', 'f')
  AND NOT c.relispartition
  AND n.nspname NOT IN ` + systemSchemas + `
ORDER BY c.oid, a.attnum`

// relationshipsQuery reports a foreign key as one-to-one when its columns
// are exactly covered by a primary key or unique constraint.
const relationshipsQuery = `
SELECT con.conname,
       n.nspname,
       c.relname,
       ARRAY(SELECT a.attname
             FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
             JOIN pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
             ORDER BY k.ord)::text[],
       rn.nspname,
       rc.relname,
       ARRAY(SELECT a.attname
             FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, ord)
             JOIN pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum
             ORDER BY k.ord)::text[],
       EXISTS (SELECT 1
               FROM pg_constraint u
               WHERE u.conrelid = con.conrelid
                 AND u.contype IN ('p', 'u')
                 AND u.conkey @> con.conkey
                 AND u.conkey <@ con.conkey)
FROM pg_constraint con
JOIN pg_class c ON c.oid = con.conrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
JOIN pg_class rc ON rc.oid = con.confrelid
JOIN pg_namespace rn ON rn.oid = rc.relnamespace
WHERE con.contype = 'f'
  AND n.nspname NOT IN ` + systemSchemas + `
ORDER BY n.nspname, c.relname, con.conname`

// functionsQuery returns the argument list as a JSON array; defaults are
// assigned in Go from pronargdefaults.
const functionsQuery = `
SELECT p.oid::int8,
       n.nspname,
       p.proname,
       COALESCE((
         SELECT json_agg(json_build_object(
                  'name', COALESCE(p.proargnames[a.ord], ''),
                  'type_id', a.type_id::int8,
                  'mode', CASE COALESCE(p.proargmodes[a.ord], 'i')
                            WHEN 'i' THEN 'in'
                            WHEN 'o' THEN 'out'
                            WHEN 'b' THEN 'inout'
                            WHEN 'v' THEN 'variadic'
                            ELSE 'table'
                          END) ORDER BY a.ord)
         FROM unnest(COALESCE(p.proallargtypes, p.proargtypes::oid[])) WITH ORDINALITY AS a(type_id, ord)
       ), '[]')::text,
       p.pronargdefaults::int8,
       p.prorettype::int8,
       NULLIF(rt.typrelid, 0)::int8,
       p.proretset,
       p.prosrc
FROM pg_proc p
JOIN pg_namespace n ON n.oid = p.pronamespace
JOIN pg_type rt ON rt.oid = p.prorettype
WHERE p.prokind = 'f'
  AND n.nspname NOT IN ` + systemSchemas + `
ORDER BY n.nspname, p.proname, p.oid`

const typesQuery = `
SELECT t.oid::int8,
       t.typname,
       n.nspname,
       COALESCE((
         SELECT json_agg(e.enumlabel ORDER BY e.enumsortorder)
         FROM pg_enum e
         WHERE e.enumtypid = t.oid
       ), '[]')::text,
       COALESCE((
         SELECT json_agg(json_build_object('name', a.attname, 'type_id', a.atttypid::int8) ORDER BY a.attnum)
         FROM pg_attribute a
         JOIN pg_class c ON c.oid = a.attrelid
         WHERE a.attrelid = t.typrelid
           AND c.relkind = 'c'
           AND a.attnum > 0
           AND NOT a.attisdropped
       ), '[]')::text,
       NULLIF(t.typrelid, 0)::int8,
       obj_description(t.oid, 'pg_type')
FROM pg_type t
JOIN pg_namespace n ON n.oid = t.typnamespace
WHERE n.nspname <> 'pg_toast'
ORDER BY t.oid`
