package sqlinline

const QSelectDataSource = `--sql 8d3c6f0e-2a41-4b7e-9c55-1f0a7e3b6d21
select name, source_dirs, target_dir
from data_sources
where name = $1
limit 1;
`

// Exact-name matches sort ahead of case-insensitive ones.
const QSelectAugmentation = `--sql c41e9b27-75d0-4f3a-8e6b-0a9d2c5f4e13
select name, module_name, function_name, coalesce(args, '{}'::jsonb)
from augmentations
where lower(name) = lower($1)
order by (name = $1) desc
limit 1;
`

const QUpsertDataSource = `--sql 5f2a8c91-3b6d-4e07-a1c4-9d8e7f6b5a30
insert into data_sources (name, source_dirs, target_dir, updated_at)
values ($1, $2, $3, now())
on conflict (name) do update set
    source_dirs = excluded.source_dirs,
    target_dir = excluded.target_dir,
    updated_at = now();
`

const QUpsertAugmentation = `--sql 2e7b0d64-9a1f-4c38-b5e2-6f3c8a1d0b97
insert into augmentations (name, module_name, function_name, args, updated_at)
values ($1, $2, $3, $4, now())
on conflict (name) do update set
    module_name = excluded.module_name,
    function_name = excluded.function_name,
    args = excluded.args,
    updated_at = now();
`

const QSelectDataSources = `--sql 9a6e3f12-4c8b-4d7a-b0e5-3c1f7d2a8e64
select name, source_dirs, target_dir
from data_sources
order by name;
`

const QCreateDataSources = `--sql 71d4b8a3-0e2c-4f96-8b1d-5a7c3e9f2d08
create table if not exists data_sources (
    name        text primary key,
    source_dirs text[] not null default '{}',
    target_dir  text not null,
    updated_at  timestamptz not null default now()
);
`

const QCreateAugmentations = `--sql e3b5c7d9-1f2a-4b6c-8d0e-2a4c6e8f0b13
create table if not exists augmentations (
    name          text primary key,
    module_name   text not null,
    function_name text not null,
    args          jsonb not null default '{}'::jsonb,
    updated_at    timestamptz not null default now()
);
`
